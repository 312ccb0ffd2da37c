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

type ReorderHandler struct {
	reorderService service.ReorderService
}

func NewReorderHandler(reorderService service.ReorderService) *ReorderHandler {
	return &ReorderHandler{reorderService: reorderService}
}

type confirmReorderRequest struct {
	Received int `json:"received" binding:"required,gt=0"`
}

func (h *ReorderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reorders := router.Group("/api/reorders")
	reorders.Use(middleware.RequireCapability(model.CapReordersManage))
	{
		reorders.GET("", h.GetReorders)
		reorders.POST("/scan", h.Scan)
		reorders.POST("/:id/confirm", h.Confirm)
		reorders.POST("/:id/cancel", h.Cancel)
	}
}

// @Summary      Get reorder requests
// @Tags         reorders
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        status  query     string  false  "PENDING, RECEIVED or CANCELLED"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/reorders [get]
func (h *ReorderHandler) GetReorders(c *gin.Context) {
	p := pagination.Parse(c)

	requests, total, err := h.reorderService.List(c.Request.Context(), p.Page, p.Limit, c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(requests, total, p)))
}

// Scan opens reorder requests for every low-stock product and notifies suppliers
// @Summary      Scan reorder levels
// @Tags         reorders
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ReorderRequest}
// @Router       /api/reorders/scan [post]
func (h *ReorderHandler) Scan(c *gin.Context) {
	created, err := h.reorderService.ScanReorderLevels(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if created == nil {
		created = []model.ReorderRequest{}
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, created))
}

// @Summary      Confirm reorder delivery
// @Tags         reorders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Reorder request ID"
// @Param        payload  body      confirmReorderRequest  true  "Units received"
// @Success      200      {object}  response.Response{data=model.ReorderRequest}
// @Failure      409      {object}  response.Response
// @Router       /api/reorders/{id}/confirm [post]
func (h *ReorderHandler) Confirm(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req confirmReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	rr, err := h.reorderService.Confirm(c.Request.Context(), actor(c), id, req.Received)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rr))
}

// @Summary      Cancel reorder request
// @Tags         reorders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Reorder request ID"
// @Success      200  {object}  response.Response{data=model.ReorderRequest}
// @Failure      409  {object}  response.Response
// @Router       /api/reorders/{id}/cancel [post]
func (h *ReorderHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rr, err := h.reorderService.Cancel(c.Request.Context(), actor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rr))
}
