package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
)

// ErrorBody is the JSON shape of a failed request.
type ErrorBody struct {
	Error *appErrors.Error `json:"error"`
}

// JSON writes data unwrapped, the way a json-server style backend answers.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-cache")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(appErr.Status, ErrorBody{Error: appErr})
}
