package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/julefagdag/agenda/internal/apperr"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// Accepted sends a 202 JSON response for queued work.
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, Body{Success: true, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// Error maps err to a status code: validation 400, not found 404, auth 401, anything else 500.
// Binding tag failures count as validation. Internal errors are reported with the generic
// message only.
func Error(c *gin.Context, err error, internalMsg string) {
	var (
		verr  *apperr.ValidationError
		verrs validator.ValidationErrors
		nerr  *apperr.NotFoundError
		aerr  *apperr.AuthError
	)
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		BadRequest(c, fieldError(verrs[0]).Error())
	case errors.As(err, &verr):
		BadRequest(c, verr.Error())
	case errors.As(err, &nerr):
		NotFound(c, nerr.Error())
	case errors.As(err, &aerr):
		Unauthorized(c, aerr.Error())
	default:
		Internal(c, internalMsg)
	}
}
