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

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type restockRequest struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products")
	{
		products.GET("", middleware.RequireCapability(model.CapCatalogRead), h.GetProducts)
		products.GET("/search", middleware.RequireCapability(model.CapCatalogRead), h.SearchProducts)
		products.GET("/:id", middleware.RequireCapability(model.CapCatalogRead), h.GetProduct)
		products.GET("/:id/history", middleware.RequireCapability(model.CapCatalogRead), h.GetStockHistory)
		products.POST("", middleware.RequireCapability(model.CapCatalogWrite), h.CreateProduct)
		products.PUT("/:id", middleware.RequireCapability(model.CapCatalogWrite), h.UpdateProduct)
		products.PUT("/:id/quantity", middleware.RequireCapability(model.CapCatalogWrite), h.SetQuantity)
		products.POST("/:id/restock", middleware.RequireCapability(model.CapCatalogWrite), h.Restock)
	}
}

// GetProducts handles retrieving the paginated catalog
// @Summary      Get products
// @Description  Retrieves a paginated list of products with current stock
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/products [get]
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	p := pagination.Parse(c)

	products, total, err := h.catalogService.ListProducts(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(products, total, p)))
}

// SearchProducts matches name or brand, best stocked first
// @Summary      Search products
// @Description  Case-insensitive substring match on name or brand, ordered by quantity descending
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        q      query     string  true  "Search term"
// @Success      200    {object}  response.Response{data=[]model.Product}
// @Failure      400    {object}  response.Response
// @Router       /api/products/search [get]
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	products, err := h.catalogService.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// @Summary      Get product
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      int  true  "Product ID"
// @Success      200    {object}  response.Response{data=model.Product}
// @Failure      404    {object}  response.Response
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// GetStockHistory lists the newest ledger entries for a product
// @Summary      Stock history
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      int  true   "Product ID"
// @Param        limit  query     int  false  "Max entries (default 20)"
// @Success      200    {object}  response.Response{data=[]model.InventoryTransaction}
// @Router       /api/products/{id}/history [get]
func (h *CatalogHandler) GetStockHistory(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(pagination.DefaultLimit)))
	if limit < pagination.MinLimit || limit > pagination.MaxLimit {
		limit = pagination.DefaultLimit
	}

	history, err := h.catalogService.StockHistory(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

// CreateProduct adds a product to the catalog
// @Summary      Create product
// @Description  Creates a product; the id is optional and assigned when omitted
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// @Summary      Update product
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                           true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), actor(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// SetQuantity overwrites the stock level and records an adjustment
// @Summary      Set stock quantity
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                 true  "Product ID"
// @Param        payload  body      setQuantityRequest  true  "New quantity"
// @Success      200      {object}  response.Response{data=model.Product}
// @Router       /api/products/{id}/quantity [put]
func (h *CatalogHandler) SetQuantity(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	product, err := h.catalogService.SetQuantity(c.Request.Context(), actor(c), id, *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// @Summary      Restock product
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Product ID"
// @Param        payload  body      restockRequest  true  "Units received"
// @Success      200      {object}  response.Response{data=model.Product}
// @Router       /api/products/{id}/restock [post]
func (h *CatalogHandler) Restock(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	product, err := h.catalogService.Restock(c.Request.Context(), actor(c), id, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}
