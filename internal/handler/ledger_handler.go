package handler

import (
	"net/http"

	"lynnops/internal/middleware"
	"lynnops/internal/service"
	"lynnops/pkg/pagination"
	"lynnops/pkg/response"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerService service.LedgerService
}

func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	ledger := router.Group("/api/locations/:locationId", middleware.Authenticate())
	{
		ledger.GET("/transactions", h.ListTransactions)
		ledger.POST("/transactions", h.RecordTransaction)
	}
}

// ListTransactions returns a location's stock movement history
// @Summary      List transactions
// @Description  Retrieves the paginated IMPORT/EXPORT ledger for a location, newest first
// @Tags         transactions
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true   "Location ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        type        query     string  false  "Filter by transaction type (IMPORT, EXPORT)"
// @Param        product_id  query     string  false  "Filter by product ID"
// @Success      200         {object}  response.Response{data=object}
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/transactions [get]
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	params := pagination.Parse(c)

	transactions, total, err := h.ledgerService.ListTransactions(c.Request.Context(), actor, c.Param("locationId"), params.Page, params.Limit, c.Query("type"), c.Query("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// RecordTransaction appends a stock movement and updates the product quantity
// @Summary      Record transaction
// @Description  Records an IMPORT or EXPORT movement; the ledger entry and the quantity update commit atomically, and exports that would overdraw stock are rejected
// @Tags         transactions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                            true  "Location ID"
// @Param        payload     body      service.RecordTransactionRequest  true  "Record Transaction Payload"
// @Success      201         {object}  response.Response{data=service.TransactionResponse}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/transactions [post]
func (h *LedgerHandler) RecordTransaction(c *gin.Context) {
	var req service.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	transaction, err := h.ledgerService.RecordTransaction(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, transaction))
}
