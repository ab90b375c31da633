package handler

import (
	"net/http"

	"lynnops/internal/middleware"
	"lynnops/internal/service"
	"lynnops/pkg/pagination"
	"lynnops/pkg/response"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	saleService service.SaleService
}

func NewSaleHandler(saleService service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/api/locations/:locationId", middleware.Authenticate())
	{
		sales.GET("/sales", h.ListOrders)
		sales.POST("/sales", h.CreateOrder)
		sales.GET("/sales/:id", h.GetOrder)
		sales.DELETE("/sales/:id", h.DeleteOrder)
	}
}

// ListOrders returns a location's sale orders
// @Summary      List sale orders
// @Description  Retrieves a paginated list of a location's sale orders, newest first
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true   "Location ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/sales [get]
func (h *SaleHandler) ListOrders(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	params := pagination.Parse(c)

	orders, total, err := h.saleService.ListOrders(c.Request.Context(), actor, c.Param("locationId"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// CreateOrder creates a multi-line sale order and deducts stock atomically
// @Summary      Create sale order
// @Description  Creates a sale order; every line is validated against current stock before any deduction, so an order either fully commits or leaves stock untouched
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                          true  "Location ID"
// @Param        payload     body      service.CreateSaleOrderRequest  true  "Create Sale Order Payload"
// @Success      201         {object}  response.Response{data=service.SaleOrderResponse}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/sales [post]
func (h *SaleHandler) CreateOrder(c *gin.Context) {
	var req service.CreateSaleOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	order, err := h.saleService.CreateOrder(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// GetOrder returns a single sale order with its snapshot lines
// @Summary      Get sale order
// @Description  Retrieves a sale order with its item snapshots as captured at sale time
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Order ID"
// @Success      200         {object}  response.Response{data=service.SaleOrderResponse}
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/sales/{id} [get]
func (h *SaleHandler) GetOrder(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	order, err := h.saleService.GetOrder(c.Request.Context(), actor, c.Param("locationId"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// DeleteOrder cancels a sale order and restores the deducted stock
// @Summary      Delete sale order
// @Description  Deletes a sale order and adds every line's quantity back to its product in the same transaction
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Order ID"
// @Success      200         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Failure      409         {object}  response.Response
// @Router       /api/locations/{locationId}/sales/{id} [delete]
func (h *SaleHandler) DeleteOrder(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.saleService.DeleteOrder(c.Request.Context(), actor, c.Param("locationId"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Order deleted successfully"))
}
