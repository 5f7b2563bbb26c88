package printing

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"html/template"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

// labelQRSize is the QR edge in pixels embedded in each label
const labelQRSize = 240

// QREncoder produces QR code PNGs
type QREncoder interface {
	PNG(content string, size int) ([]byte, error)
}

// StoreInfo is printed on receipt headers
type StoreInfo struct {
	Name    string
	Address string
	TaxID   string
}

// Documents builds the printable documents of the shop
type Documents struct {
	renderer  PDFRenderer
	qr        QREncoder
	money     *MoneyFormatter
	store     StoreInfo
	loc       *time.Location
	templates *template.Template
	logger    *zap.Logger
}

// NewDocuments parses the embedded templates. A nil renderer makes every
// PDF call fail with ErrCodeDisabled while HTML rendering keeps working.
func NewDocuments(renderer PDFRenderer, qr QREncoder, money *MoneyFormatter, store StoreInfo, loc *time.Location, logger *zap.Logger) (*Documents, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplate, "failed to parse templates", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	store.Name = cases.Upper(language.Spanish).String(store.Name)

	return &Documents{
		renderer:  renderer,
		qr:        qr,
		money:     money,
		store:     store,
		loc:       loc,
		templates: tmpl,
		logger:    logger,
	}, nil
}

type receiptLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

type receiptView struct {
	StoreName      string
	StoreAddress   string
	StoreTaxID     string
	Number         string
	IssuedAt       string
	Cancelled      bool
	CancelReason   string
	Lines          []receiptLine
	ItemCount      int
	Total          string
	HasBudget      bool
	Budget         string
	PercentageUsed string
	Remaining      string
	BudgetStatus   string
	Exceeded       bool
	Notes          string
}

// ReceiptHTML renders the 80 mm receipt of a ticket
func (d *Documents) ReceiptHTML(t *ticket.Ticket) (string, error) {
	view := receiptView{
		StoreName:    d.store.Name,
		StoreAddress: d.store.Address,
		StoreTaxID:   d.store.TaxID,
		Number:       t.Number,
		IssuedAt:     t.IssuedAt.In(d.loc).Format("02/01/2006 15:04"),
		Cancelled:    t.IsCancelled(),
		CancelReason: t.CancelReason,
		ItemCount:    t.ItemCount,
		Total:        d.money.Format(t.Total),
		BudgetStatus: string(t.Budget.Status),
		Exceeded:     t.Budget.Status == shopping.BudgetStatusExceeded,
		Notes:        t.Notes,
	}
	for _, item := range t.Items {
		view.Lines = append(view.Lines, receiptLine{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: d.money.Number(item.UnitPrice),
			LineTotal: d.money.Number(item.LineTotal),
		})
	}
	if b := t.Budget; b.Budget != nil && b.PercentageUsed != nil && b.Remaining != nil {
		view.HasBudget = true
		view.Budget = d.money.Format(*b.Budget)
		view.PercentageUsed = d.money.Percent(*b.PercentageUsed)
		view.Remaining = d.money.Format(b.Remaining.Abs())
	}

	return d.execute("receipt.html", view)
}

type labelView struct {
	Name     string
	Code     string
	QRCode   string
	QRImage  template.URL
	Price    string
	Octagons []string
}

// LabelSheetHTML renders an A4 sheet of shelf labels
func (d *Documents) LabelSheetHTML(products []*catalog.Product) (string, error) {
	labels := make([]labelView, 0, len(products))
	for _, p := range products {
		png, err := d.qr.PNG(p.QRCode, labelQRSize)
		if err != nil {
			return "", NewRenderError(ErrCodeTemplate, "failed to encode QR for "+p.Code, err)
		}
		lv := labelView{
			Name:    p.Name,
			Code:    p.Code,
			QRCode:  p.QRCode,
			QRImage: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
			Price:   d.money.Format(p.Price),
		}
		for _, w := range p.OctagonWarnings() {
			lv.Octagons = append(lv.Octagons, w.Label)
		}
		labels = append(labels, lv)
	}

	return d.execute("labels.html", struct {
		Labels []labelView
		Legend string
	}{Labels: labels, Legend: catalog.OctagonLegend})
}

// TicketReceipt renders the receipt PDF
func (d *Documents) TicketReceipt(ctx context.Context, t *ticket.Ticket) ([]byte, error) {
	html, err := d.ReceiptHTML(t)
	if err != nil {
		return nil, err
	}
	return d.render(ctx, &RenderRequest{
		HTML:    html,
		Paper:   PaperReceipt80,
		Title:   t.Number,
		Margins: Margins{},
	})
}

// LabelSheet renders the label sheet PDF
func (d *Documents) LabelSheet(ctx context.Context, products []*catalog.Product) ([]byte, error) {
	html, err := d.LabelSheetHTML(products)
	if err != nil {
		return nil, err
	}
	return d.render(ctx, &RenderRequest{
		HTML:    html,
		Paper:   PaperA4,
		Title:   "Etiquetas",
		Margins: Margins{Top: 8, Right: 8, Bottom: 8, Left: 8},
	})
}

func (d *Documents) render(ctx context.Context, req *RenderRequest) ([]byte, error) {
	if d.renderer == nil {
		return nil, NewRenderError(ErrCodeDisabled, "PDF printing is disabled", nil)
	}
	result, err := d.renderer.Render(ctx, req)
	if err != nil {
		d.logger.Warn("PDF render failed", zap.String("title", req.Title), zap.Error(err))
		return nil, err
	}
	return result.PDFData, nil
}

func (d *Documents) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := d.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to execute "+name, err)
	}
	return buf.String(), nil
}
