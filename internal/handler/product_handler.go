package handler

import (
	"net/http"

	"lynnops/internal/middleware"
	"lynnops/internal/service"
	"lynnops/pkg/pagination"
	"lynnops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/locations/:locationId", middleware.Authenticate())
	{
		products.GET("/products", h.ListProducts)
		products.POST("/products", h.CreateProduct)
		products.PUT("/products/:id", h.UpdateProduct)
		products.DELETE("/products/:id", h.DeleteProduct)
		products.PATCH("/products/:id/status", h.ToggleProductStatus)

		products.GET("/categories", h.ListCategories)
		products.POST("/categories", h.CreateCategory)
		products.PUT("/categories/:id", h.UpdateCategory)
		products.DELETE("/categories/:id", h.DeleteCategory)
	}
}

// ListProducts returns a location's products with current stock
// @Summary      List products
// @Description  Retrieves a paginated list of a location's products with authoritative stock quantities
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true   "Location ID"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        search      query     string  false  "Search by product name or SKU"
// @Param        status      query     string  false  "Filter by status (available, inactive)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	params := pagination.Parse(c)

	products, total, err := h.productService.ListProducts(c.Request.Context(), actor, c.Param("locationId"), params.Page, params.Limit, c.Query("search"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// CreateProduct registers a new product with zero stock
// @Summary      Create product
// @Description  Creates a product in a location; stock always starts at zero and only moves through ledger transactions
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                        true  "Location ID"
// @Param        payload     body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201         {object}  response.Response{data=service.ProductResponse}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	product, err := h.productService.CreateProduct(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// UpdateProduct updates a product's metadata
// @Summary      Update product
// @Description  Updates a product's details; the quantity field is a direct correction that bypasses the ledger
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                        true  "Location ID"
// @Param        id          path      string                        true  "Product ID"
// @Param        payload     body      service.UpdateProductRequest  true  "Update Product Payload"
// @Success      200         {object}  response.Response{data=service.ProductResponse}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	product, err := h.productService.UpdateProduct(c.Request.Context(), actor, c.Param("locationId"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct removes a product that has no movement history
// @Summary      Delete product
// @Description  Deletes a product; refused with a conflict if any transaction or order references it
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Product ID"
// @Success      200         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Failure      409         {object}  response.Response
// @Router       /api/locations/{locationId}/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.productService.DeleteProduct(c.Request.Context(), actor, c.Param("locationId"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Product deleted successfully"))
}

// ToggleProductStatus flips a product between available and inactive
// @Summary      Toggle product status
// @Description  Toggles a product between available and inactive without touching its stock
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Product ID"
// @Success      200         {object}  response.Response{data=service.ProductResponse}
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/products/{id}/status [patch]
func (h *ProductHandler) ToggleProductStatus(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	product, err := h.productService.ToggleProductStatus(c.Request.Context(), actor, c.Param("locationId"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// ListCategories returns a location's product categories
// @Summary      List categories
// @Description  Retrieves all product categories defined for a location
// @Tags         categories
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Success      200         {object}  response.Response{data=[]service.CategoryResponse}
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/categories [get]
func (h *ProductHandler) ListCategories(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	categories, err := h.productService.ListCategories(c.Request.Context(), actor, c.Param("locationId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateCategory adds a product category to a location
// @Summary      Create category
// @Description  Creates a product category scoped to a location
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                   true  "Location ID"
// @Param        payload     body      service.CategoryRequest  true  "Create Category Payload"
// @Success      201         {object}  response.Response{data=service.CategoryResponse}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /api/locations/{locationId}/categories [post]
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	category, err := h.productService.CreateCategory(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// UpdateCategory renames a product category
// @Summary      Update category
// @Description  Updates a category's name and description
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                   true  "Location ID"
// @Param        id          path      string                   true  "Category ID"
// @Param        payload     body      service.CategoryRequest  true  "Update Category Payload"
// @Success      200         {object}  response.Response{data=service.CategoryResponse}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/categories/{id} [put]
func (h *ProductHandler) UpdateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	category, err := h.productService.UpdateCategory(c.Request.Context(), actor, c.Param("locationId"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// DeleteCategory removes a product category
// @Summary      Delete category
// @Description  Deletes a category; products keep running with a cleared category reference
// @Tags         categories
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Param        id          path      string  true  "Category ID"
// @Success      200         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId}/categories/{id} [delete]
func (h *ProductHandler) DeleteCategory(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.productService.DeleteCategory(c.Request.Context(), actor, c.Param("locationId"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Category deleted successfully"))
}
