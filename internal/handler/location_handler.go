package handler

import (
	"net/http"

	"lynnops/internal/middleware"
	"lynnops/internal/service"
	"lynnops/pkg/response"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locationService service.LocationService
	accessService   service.AccessService
}

func NewLocationHandler(locationService service.LocationService, accessService service.AccessService) *LocationHandler {
	return &LocationHandler{locationService: locationService, accessService: accessService}
}

func (h *LocationHandler) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/api/locations", middleware.Authenticate())
	{
		locations.GET("", h.ListLocations)
		locations.POST("", h.CreateLocation)
		locations.PUT("/:locationId", h.UpdateLocation)
		locations.DELETE("/:locationId", h.DeleteLocation)
	}

	grants := router.Group("/api/users/:id", middleware.Authenticate())
	{
		grants.GET("/grants", h.GetUserGrants)
		grants.PUT("/locations/:locationId/grants", h.ReplaceGrants)
		grants.DELETE("/locations/:locationId/grants", h.RevokeGrants)
	}
}

// ListLocations returns the locations visible to the caller
// @Summary      List locations
// @Description  Returns all locations the caller can see: superadmins see every location, admins their own, users those they hold grants for
// @Tags         locations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.LocationResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/locations [get]
func (h *LocationHandler) ListLocations(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	locations, err := h.locationService.ListLocations(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, locations))
}

// CreateLocation registers a new operating location
// @Summary      Create location
// @Description  Creates a location owned by the calling admin; superadmins may assign another admin as owner
// @Tags         locations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateLocationRequest  true  "Create Location Payload"
// @Success      201      {object}  response.Response{data=service.LocationResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/locations [post]
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req service.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	location, err := h.locationService.CreateLocation(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, location))
}

// UpdateLocation updates a location's details
// @Summary      Update location
// @Description  Updates a location's name, type, address or currency; ownership never changes here
// @Tags         locations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        locationId  path      string                         true  "Location ID"
// @Param        payload     body      service.UpdateLocationRequest  true  "Update Location Payload"
// @Success      200         {object}  response.Response{data=service.LocationResponse}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId} [put]
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	var req service.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	location, err := h.locationService.UpdateLocation(c.Request.Context(), actor, c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, location))
}

// DeleteLocation removes a location and its access grants
// @Summary      Delete location
// @Description  Soft deletes a location and revokes every grant scoped to it
// @Tags         locations
// @Security     BearerAuth
// @Produce      json
// @Param        locationId  path      string  true  "Location ID"
// @Success      200         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/locations/{locationId} [delete]
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.locationService.DeleteLocation(c.Request.Context(), actor, c.Param("locationId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Location deleted successfully"))
}

// GetUserGrants lists a user's location access grants
// @Summary      Get user grants
// @Description  Lists the location access grants held by a user; admins only see grants for locations they own
// @Tags         grants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=[]service.GrantResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id}/grants [get]
func (h *LocationHandler) GetUserGrants(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	grants, err := h.accessService.GetUserGrants(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, grants))
}

// ReplaceGrants replaces a user's capability set for one location
// @Summary      Replace location grants
// @Description  Replaces the full capability set a user holds for a location; an empty set grants view-only access
// @Tags         grants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id          path      string                        true  "User ID"
// @Param        locationId  path      string                        true  "Location ID"
// @Param        payload     body      service.ReplaceGrantsRequest  true  "Replace Grants Payload"
// @Success      200         {object}  response.Response{data=service.GrantResponse}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/users/{id}/locations/{locationId}/grants [put]
func (h *LocationHandler) ReplaceGrants(c *gin.Context) {
	var req service.ReplaceGrantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload: "+err.Error()))
		return
	}

	actor := middleware.ActorFromContext(c)

	grant, err := h.accessService.ReplaceLocationGrants(c.Request.Context(), actor, c.Param("id"), c.Param("locationId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, grant))
}

// RevokeGrants removes a user's access to one location entirely
// @Summary      Revoke location grants
// @Description  Removes a user's grant row for a location, revoking all access to it
// @Tags         grants
// @Security     BearerAuth
// @Produce      json
// @Param        id          path      string  true  "User ID"
// @Param        locationId  path      string  true  "Location ID"
// @Success      200         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/users/{id}/locations/{locationId}/grants [delete]
func (h *LocationHandler) RevokeGrants(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	if err := h.accessService.RevokeLocationGrants(c.Request.Context(), actor, c.Param("id"), c.Param("locationId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Grants revoked successfully"))
}
