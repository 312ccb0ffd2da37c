package handler

import (
	"net/http"

	"storepos/internal/middleware"
	"storepos/internal/model"
	"storepos/internal/service"
	"storepos/pkg/pagination"
	"storepos/pkg/response"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/api/customers")
	{
		customers.GET("", middleware.RequireCapability(model.CapCustomersRead), h.GetCustomers)
		customers.GET("/phone/:phone", middleware.RequireCapability(model.CapCustomersRead), h.GetCustomerByPhone)
		customers.GET("/:id", middleware.RequireCapability(model.CapCustomersRead), h.GetCustomer)
		customers.PUT("/:id", middleware.RequireCapability(model.CapCustomersWrite), h.UpdateCustomer)
	}
}

// @Summary      Get customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Match on name or phone"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/customers [get]
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	p := pagination.Parse(c)

	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), p.Page, p.Limit, c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(customers, total, p)))
}

// @Summary      Get customer by phone
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        phone  path      string  true  "10-digit phone"
// @Success      200    {object}  response.Response{data=model.Customer}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /api/customers/phone/{phone} [get]
func (h *CustomerHandler) GetCustomerByPhone(c *gin.Context) {
	customer, err := h.customerService.FindByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      int  true  "Customer ID"
// @Success      200    {object}  response.Response{data=model.Customer}
// @Failure      404    {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                            true  "Customer ID"
// @Param        payload  body      service.UpdateCustomerRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Customer}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), actor(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}
