package handler

import (
	"net/http"

	"lynnops/internal/middleware"
	"lynnops/internal/service"
	"lynnops/pkg/pagination"
	"lynnops/pkg/response"

	"github.com/gin-gonic/gin"
)

// RegistryHandler serves the location-scoped support registries: suppliers,
// customers, guests, expenses and documents.
type RegistryHandler struct {
	registryService service.RegistryService
}

func NewRegistryHandler(registryService service.RegistryService) *RegistryHandler {
	return &RegistryHandler{registryService: registryService}
}

func (h *RegistryHandler) RegisterRoutes(router *gin.RouterGroup) {
	registry := router.Group("/api/locations/:locationId", middleware.Authenticate())
	{
		registry.GET("/suppliers", h.ListSuppliers)
		registry.POST("/suppliers", h.CreateSupplier)
		registry.PUT("/suppliers/:id", h.UpdateSupplier)
		registry.DELETE("/suppliers/:id", h.DeleteSupplier)

		registry.GET("/customers", h.ListCustomers)
		registry.POST("/customers", h.CreateCustomer)
		registry.PUT("/customers/:id", h.UpdateCustomer)
		registry.DELETE("/customers/:id", h.DeleteCustomer)

		registry.GET("/guests", h.ListGuests)
		registry.POST("/guests", h.CreateGuest)
		registry.PUT("/guests/:id", h.UpdateGuest)
		registry.DELETE("/guests/:id", h.DeleteGuest)

		registry.GET("/expenses", h.ListExpenses)
		registry.POST("/expenses", h.CreateExpense)
		registry.DELETE("/expenses/:id", h.DeleteExpense)

		registry.GET("/documents", h.ListDocuments)
		registry.POST("/documents", h.AttachDocument)
		registry.DELETE("/documents/:id", h.DeleteDocument)
	}
}

// ListSuppliers returns a location's suppliers
// @Summary      List suppliers
// @Description  Retrieves a paginated list of a location's suppliers
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true   "Location ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        search      query     string  false  "Search by supplier name"
// @Success      200         {object}  response.Response{data=object}
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/suppliers [get]
func (h *RegistryHandler) ListSuppliers(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	params := pagination.Parse(c)

	suppliers, total, err := h.registryService.ListSuppliers(c.Request.Context(), actor, c.Param("locationId"), params.Page, params.Limit, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"suppliers": suppliers,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// CreateSupplier registers a supplier for a location
// @Summary      Create supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                   true  "Location ID"
// @Param        payload     body      service.SupplierRequest  true  "Create Supplier Payload"
// @Success      201         {object}  response.Response{data=model.Supplier}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/suppliers [post]
func (h *RegistryHandler) CreateSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	supplier, err := h.registryService.CreateSupplier(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// UpdateSupplier updates a supplier's details
// @Summary      Update supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                   true  "Location ID"
// @Param        id          path      string                   true  "Supplier ID"
// @Param        payload     body      service.SupplierRequest  true  "Update Supplier Payload"
// @Success      200         {object}  response.Response{data=model.Supplier}
// @Failure      400         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/suppliers/{id} [put]
func (h *RegistryHandler) UpdateSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	supplier, err := h.registryService.UpdateSupplier(c.Request.Context(), actor, c.Param("locationId"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// DeleteSupplier removes a supplier
// @Summary      Delete supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Supplier ID"
// @Success      200         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/suppliers/{id} [delete]
func (h *RegistryHandler) DeleteSupplier(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.registryService.DeleteSupplier(c.Request.Context(), actor, c.Param("locationId"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Supplier deleted successfully"))
}

// ListCustomers returns a location's customers
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true   "Location ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        search      query     string  false  "Search by customer name"
// @Success      200         {object}  response.Response{data=object}
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/customers [get]
func (h *RegistryHandler) ListCustomers(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	params := pagination.Parse(c)

	customers, total, err := h.registryService.ListCustomers(c.Request.Context(), actor, c.Param("locationId"), params.Page, params.Limit, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// CreateCustomer registers a customer for a location
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                   true  "Location ID"
// @Param        payload     body      service.CustomerRequest  true  "Create Customer Payload"
// @Success      201         {object}  response.Response{data=model.Customer}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/customers [post]
func (h *RegistryHandler) CreateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	customer, err := h.registryService.CreateCustomer(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// UpdateCustomer updates a customer's details
// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                   true  "Location ID"
// @Param        id          path      string                   true  "Customer ID"
// @Param        payload     body      service.CustomerRequest  true  "Update Customer Payload"
// @Success      200         {object}  response.Response{data=model.Customer}
// @Failure      400         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/customers/{id} [put]
func (h *RegistryHandler) UpdateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	customer, err := h.registryService.UpdateCustomer(c.Request.Context(), actor, c.Param("locationId"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// DeleteCustomer removes a customer
// @Summary      Delete customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Customer ID"
// @Success      200         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/customers/{id} [delete]
func (h *RegistryHandler) DeleteCustomer(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.registryService.DeleteCustomer(c.Request.Context(), actor, c.Param("locationId"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Customer deleted successfully"))
}

// ListGuests returns a location's guest registry
// @Summary      List guests
// @Description  Retrieves a paginated list of a hotel location's guests
// @Tags         guests
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true   "Location ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        search      query     string  false  "Search by guest name"
// @Success      200         {object}  response.Response{data=object}
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/guests [get]
func (h *RegistryHandler) ListGuests(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	params := pagination.Parse(c)

	guests, total, err := h.registryService.ListGuests(c.Request.Context(), actor, c.Param("locationId"), params.Page, params.Limit, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"guests": guests,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// CreateGuest registers a guest for a location
// @Summary      Create guest
// @Tags         guests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                true  "Location ID"
// @Param        payload     body      service.GuestRequest  true  "Create Guest Payload"
// @Success      201         {object}  response.Response{data=model.Guest}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/guests [post]
func (h *RegistryHandler) CreateGuest(c *gin.Context) {
	var req service.GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	guest, err := h.registryService.CreateGuest(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, guest))
}

// UpdateGuest updates a guest's registry entry
// @Summary      Update guest
// @Tags         guests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                true  "Location ID"
// @Param        id          path      string                true  "Guest ID"
// @Param        payload     body      service.GuestRequest  true  "Update Guest Payload"
// @Success      200         {object}  response.Response{data=model.Guest}
// @Failure      400         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/guests/{id} [put]
func (h *RegistryHandler) UpdateGuest(c *gin.Context) {
	var req service.GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	guest, err := h.registryService.UpdateGuest(c.Request.Context(), actor, c.Param("locationId"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, guest))
}

// DeleteGuest removes a guest registry entry
// @Summary      Delete guest
// @Tags         guests
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Guest ID"
// @Success      200         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/guests/{id} [delete]
func (h *RegistryHandler) DeleteGuest(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.registryService.DeleteGuest(c.Request.Context(), actor, c.Param("locationId"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Guest deleted successfully"))
}

// ListExpenses returns a location's expenses
// @Summary      List expenses
// @Description  Retrieves a paginated list of a location's expenses, optionally filtered by date range
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true   "Location ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        from        query     string  false  "Range start (YYYY-MM-DD)"
// @Param        to          query     string  false  "Range end (YYYY-MM-DD)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/expenses [get]
func (h *RegistryHandler) ListExpenses(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	params := pagination.Parse(c)

	expenses, total, err := h.registryService.ListExpenses(c.Request.Context(), actor, c.Param("locationId"), params.Page, params.Limit, c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// CreateExpense records an operating expense for a location
// @Summary      Create expense
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                  true  "Location ID"
// @Param        payload     body      service.ExpenseRequest  true  "Create Expense Payload"
// @Success      201         {object}  response.Response{data=model.Expense}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/expenses [post]
func (h *RegistryHandler) CreateExpense(c *gin.Context) {
	var req service.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	expense, err := h.registryService.CreateExpense(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// DeleteExpense removes an expense record
// @Summary      Delete expense
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Expense ID"
// @Success      200         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/expenses/{id} [delete]
func (h *RegistryHandler) DeleteExpense(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.registryService.DeleteExpense(c.Request.Context(), actor, c.Param("locationId"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Expense deleted successfully"))
}

// ListDocuments returns a location's attached documents
// @Summary      List documents
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true   "Location ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/documents [get]
func (h *RegistryHandler) ListDocuments(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	params := pagination.Parse(c)

	documents, total, err := h.registryService.ListDocuments(c.Request.Context(), actor, c.Param("locationId"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"documents": documents,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// AttachDocument stores a document reference for a location
// @Summary      Attach document
// @Description  Stores an externally hosted file reference (image or raw document) for a location
// @Tags         documents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                         true  "Location ID"
// @Param        payload     body      service.AttachDocumentRequest  true  "Attach Document Payload"
// @Success      201         {object}  response.Response{data=model.LocationDocument}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/documents [post]
func (h *RegistryHandler) AttachDocument(c *gin.Context) {
	var req service.AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	document, err := h.registryService.AttachDocument(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, document))
}

// DeleteDocument removes a document reference
// @Summary      Delete document
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Document ID"
// @Success      200         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/documents/{id} [delete]
func (h *RegistryHandler) DeleteDocument(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.registryService.DeleteDocument(c.Request.Context(), actor, c.Param("locationId"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Document deleted successfully"))
}
