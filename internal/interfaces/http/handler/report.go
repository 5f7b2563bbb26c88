package handler

import (
	"time"

	reportapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
	now              func() time.Time
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(dashboardService *reportapp.DashboardService) *ReportHandler {
	return &ReportHandler{
		dashboardService: dashboardService,
		now:              time.Now,
	}
}

// Dashboard godoc
// @Summary      Sales dashboard
// @Description  Today's sales, the last 7 days, stock counts, top products and budget outcomes
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.DashboardResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.Dashboard(c.Request.Context(), h.now())
	h.reply(c, dashboard, err)
}
