package handler

import (
	shoppingapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/shopping"
	ticketapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/ticket"
	"github.com/gin-gonic/gin"
)

// ShopHandler serves the anonymous shopper flow: sessions, cart, checkout
// and the resulting ticket
type ShopHandler struct {
	BaseHandler
	cartService     *shoppingapp.CartService
	checkoutService *ticketapp.CheckoutService
	ticketService   *ticketapp.TicketService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(
	cartService *shoppingapp.CartService,
	checkoutService *ticketapp.CheckoutService,
	ticketService *ticketapp.TicketService,
) *ShopHandler {
	return &ShopHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
		ticketService:   ticketService,
	}
}

// StartSession godoc
// @Summary      Start shopping session
// @Description  Open a cart. Send a budget, skip_budget=true, or neither to be prompted later.
// @Tags         shop
// @Accept       json
// @Produce      json
// @Param        request body shopping.StartSessionRequest false "Budget choice"
// @Success      201 {object} dto.Response{data=shopping.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/sessions [post]
func (h *ShopHandler) StartSession(c *gin.Context) {
	var req shoppingapp.StartSessionRequest
	if c.Request.ContentLength != 0 {
		if !h.bindJSON(c, &req) {
			return
		}
	}

	cart, err := h.cartService.StartSession(c.Request.Context(), req)
	h.replyCreated(c, cart, err)
}

// GetSession godoc
// @Summary      Get cart
// @Tags         shop
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=shopping.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/sessions/{id} [get]
func (h *ShopHandler) GetSession(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	cart, err := h.cartService.GetSession(c.Request.Context(), id)
	h.reply(c, cart, err)
}

// ConfigureBudget godoc
// @Summary      Set budget
// @Description  Record the shopper's budget. A null budget means shopping without one.
// @Tags         shop
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Session ID" format(uuid)
// @Param        request body shopping.ConfigureBudgetRequest true "Budget"
// @Success      200 {object} dto.Response{data=shopping.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/sessions/{id}/budget [put]
func (h *ShopHandler) ConfigureBudget(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req shoppingapp.ConfigureBudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.ConfigureBudget(c.Request.Context(), id, req)
	h.reply(c, cart, err)
}

// Scan godoc
// @Summary      Scan a product
// @Description  Add the product behind a QR token to the cart
// @Tags         shop
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Session ID" format(uuid)
// @Param        request body shopping.ScanRequest true "Scanned code"
// @Success      200 {object} dto.Response{data=shopping.ScanResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/sessions/{id}/scan [post]
func (h *ShopHandler) Scan(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req shoppingapp.ScanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.cartService.ScanProduct(c.Request.Context(), id, req)
	h.reply(c, result, err)
}

// AddItem godoc
// @Summary      Add product
// @Description  Add a product picked from the catalogue browser
// @Tags         shop
// @Accept       json
// @Produce      json
// @Param        id      path string                  true "Session ID" format(uuid)
// @Param        request body shopping.AddItemRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=shopping.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/sessions/{id}/items [post]
func (h *ShopHandler) AddItem(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req shoppingapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), id, req)
	h.reply(c, cart, err)
}

// UpdateItem godoc
// @Summary      Change quantity
// @Description  Set a line quantity. Zero removes the line.
// @Tags         shop
// @Accept       json
// @Produce      json
// @Param        id         path string                         true "Session ID" format(uuid)
// @Param        product_id path string                         true "Product ID" format(uuid)
// @Param        request    body shopping.UpdateQuantityRequest true "Quantity"
// @Success      200 {object} dto.Response{data=shopping.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/sessions/{id}/items/{product_id} [put]
func (h *ShopHandler) UpdateItem(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParseUUIDParam(c, "product_id")
	if !ok {
		return
	}

	var req shoppingapp.UpdateQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.UpdateItemQuantity(c.Request.Context(), id, productID, req)
	h.reply(c, cart, err)
}

// RemoveItem godoc
// @Summary      Remove line
// @Tags         shop
// @Produce      json
// @Param        id         path string true "Session ID" format(uuid)
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=shopping.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/sessions/{id}/items/{product_id} [delete]
func (h *ShopHandler) RemoveItem(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParseUUIDParam(c, "product_id")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), id, productID)
	h.reply(c, cart, err)
}

// ClearCart godoc
// @Summary      Empty cart
// @Description  Remove every line. The budget decision is kept.
// @Tags         shop
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=shopping.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/sessions/{id}/items [delete]
func (h *ShopHandler) ClearCart(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	cart, err := h.cartService.ClearCart(c.Request.Context(), id)
	h.reply(c, cart, err)
}

// DeleteSession godoc
// @Summary      Abandon session
// @Tags         shop
// @Param        id path string true "Session ID" format(uuid)
// @Success      204
// @Router       /shop/sessions/{id} [delete]
func (h *ShopHandler) DeleteSession(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.DeleteSession(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Checkout godoc
// @Summary      Checkout
// @Description  Issue a ticket for the cart, decrement stock and close the session
// @Tags         shop
// @Accept       json
// @Produce      json
// @Param        id      path string                 true  "Session ID" format(uuid)
// @Param        request body ticket.CheckoutRequest false "Notes"
// @Success      201 {object} dto.Response{data=ticket.TicketResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/sessions/{id}/checkout [post]
func (h *ShopHandler) Checkout(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ticketapp.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if !h.bindJSON(c, &req) {
			return
		}
	}

	issued, err := h.checkoutService.Checkout(c.Request.Context(), id, req)
	h.replyCreated(c, issued, err)
}

// GetTicket godoc
// @Summary      Get issued ticket
// @Tags         shop
// @Produce      json
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      200 {object} dto.Response{data=ticket.TicketResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/tickets/{id} [get]
func (h *ShopHandler) GetTicket(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	issued, err := h.ticketService.GetByID(c.Request.Context(), id)
	h.reply(c, issued, err)
}

// TicketPDF godoc
// @Summary      Download receipt
// @Tags         shop
// @Produce      application/pdf
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shop/tickets/{id}/pdf [get]
func (h *ShopHandler) TicketPDF(c *gin.Context) {
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
