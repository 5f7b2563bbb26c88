package handler

import (
	ticketapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/ticket"
	"github.com/gin-gonic/gin"
)

// TicketHandler handles ticket administration
type TicketHandler struct {
	BaseHandler
	ticketService *ticketapp.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService *ticketapp.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// List godoc
// @Summary      List tickets
// @Description  Tickets filtered by status and store-local issue date. to is inclusive.
// @Tags         tickets
// @Produce      json
// @Param        search    query string false "Ticket number search"
// @Param        status    query string false "Status" Enums(issued, cancelled)
// @Param        from      query string false "First day (YYYY-MM-DD)"
// @Param        to        query string false "Last day (YYYY-MM-DD)"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        order_by  query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]ticket.TicketResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	var filter ticketapp.TicketListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	tickets, total, err := h.ticketService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, tickets, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get ticket
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      200 {object} dto.Response{data=ticket.TicketResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets/{id} [get]
func (h *TicketHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	t, err := h.ticketService.GetByID(c.Request.Context(), id)
	h.reply(c, t, err)
}

// GetByNumber godoc
// @Summary      Get ticket by number
// @Tags         tickets
// @Produce      json
// @Param        number path string true "Ticket number" example(T-20260315-0001)
// @Success      200 {object} dto.Response{data=ticket.TicketResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets/number/{number} [get]
func (h *TicketHandler) GetByNumber(c *gin.Context) {
	t, err := h.ticketService.GetByNumber(c.Request.Context(), c.Param("number"))
	h.reply(c, t, err)
}

// Cancel godoc
// @Summary      Cancel ticket
// @Description  Void a ticket and return its quantities to stock
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Ticket ID" format(uuid)
// @Param        request body ticket.CancelTicketRequest true "Reason"
// @Success      200 {object} dto.Response{data=ticket.TicketResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets/{id}/cancel [post]
func (h *TicketHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ticketapp.CancelTicketRequest
	if !h.bindJSON(c, &req) {
		return
	}

	t, err := h.ticketService.Cancel(c.Request.Context(), id, req)
	h.reply(c, t, err)
}

// UpdateNotes godoc
// @Summary      Edit ticket notes
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Ticket ID" format(uuid)
// @Param        request body ticket.UpdateNotesRequest true "Notes"
// @Success      200 {object} dto.Response{data=ticket.TicketResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets/{id}/notes [put]
func (h *TicketHandler) UpdateNotes(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ticketapp.UpdateNotesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	t, err := h.ticketService.UpdateNotes(c.Request.Context(), id, req)
	h.reply(c, t, err)
}

// PDF godoc
// @Summary      Ticket receipt PDF
// @Tags         tickets
// @Produce      application/pdf
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets/{id}/pdf [get]
func (h *TicketHandler) PDF(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	pdf, filename, err := h.ticketService.ReceiptPDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.File(c, "application/pdf", filename+".pdf", pdf, true)
}

// Delete godoc
// @Summary      Delete ticket
// @Description  Only cancelled tickets can be deleted
// @Tags         tickets
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets/{id} [delete]
func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.ticketService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
