package handler

import (
	"net/http"
	"strconv"

	"storepos/internal/middleware"
	"storepos/internal/model"
	"storepos/internal/service"
	"storepos/pkg/pagination"
	"storepos/pkg/response"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.POST("/checkout", middleware.RequireCapability(model.CapBillingCheckout), h.Checkout)
		api.GET("/bills", middleware.RequireCapability(model.CapReportsRead), h.GetBills)
		api.GET("/bills/:id", middleware.RequireCapability(model.CapBillingCheckout), h.GetBill)
		api.GET("/bills/:id/receipt", middleware.RequireCapability(model.CapBillingCheckout), h.GetReceipt)
	}
}

// Checkout runs one billing session from a prepared cart
// @Summary      Checkout
// @Description  Resolves the customer by phone (creating it when name is given), adds each line and commits the bill. Rejected lines are reported and skipped.
// @Tags         billing
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CheckoutRequest  true  "Cart"
// @Success      201      {object}  response.Response{data=service.CheckoutResponse}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.checkoutService.Checkout(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// @Summary      Get bills
// @Tags         billing
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int  false  "Page number (default 1)"
// @Param        limit        query     int  false  "Number of items per page (default 20)"
// @Param        customer_id  query     int  false  "Only bills of this customer"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/bills [get]
func (h *CheckoutHandler) GetBills(c *gin.Context) {
	p := pagination.Parse(c)
	var customerID int64
	if raw := c.Query("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			badRequest(c, "Invalid customer_id")
			return
		}
		customerID = id
	}

	bills, total, err := h.checkoutService.ListBills(c.Request.Context(), p.Page, p.Limit, customerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(bills, total, p)))
}

// @Summary      Get bill
// @Tags         billing
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      int  true  "Bill ID"
// @Success      200    {object}  response.Response{data=service.BillResponse}
// @Failure      404    {object}  response.Response
// @Router       /api/bills/{id} [get]
func (h *CheckoutHandler) GetBill(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	bill, err := h.checkoutService.GetBill(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}

// GetReceipt re-renders the printed receipt of a stored bill
// @Summary      Get receipt text
// @Tags         billing
// @Security     BearerAuth
// @Produce      plain
// @Param        id     path      int  true  "Bill ID"
// @Success      200    {string}  string
// @Failure      404    {object}  response.Response
// @Router       /api/bills/{id}/receipt [get]
func (h *CheckoutHandler) GetReceipt(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	text, err := h.checkoutService.Receipt(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}
