package handler

import (
	"errors"
	"log"
	"net/http"

	"vastustructural/internal/middleware"
	"vastustructural/internal/model"
	"vastustructural/internal/service"
	"vastustructural/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusFor maps the domain error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbiddenTransition):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "Internal server error"
	}
	c.JSON(code, response.Error(code, msg))
}

func badPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

// actorFrom builds the acting identity from the claims RequireRole stored
func actorFrom(c *gin.Context) service.Actor {
	id, role, name := middleware.Identity(c)
	return service.Actor{Role: role, ID: id, Name: name}
}
