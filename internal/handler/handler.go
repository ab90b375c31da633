package handler

import (
	"github.com/gin-gonic/gin"

	"lynnops/pkg/apperr"
	"lynnops/pkg/response"
)

// respondError maps a service error onto the response envelope. The status
// code and machine-checkable category come from the error taxonomy so
// handlers never have to inspect errors themselves.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	c.JSON(status, response.Error(status, string(apperr.CategoryOf(err)), apperr.MessageOf(err)))
}
