package handler

import (
	"github.com/Mrabbi3/ConceptsPro/internal/middleware"
	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/Mrabbi3/ConceptsPro/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseUUIDParam reads a path parameter as a UUID.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Wrap(apperror.ErrInvalidInput, "invalid "+name)
	}
	return id, nil
}

// bindJSON binds and validates the request body, mapping validation
// failures onto the 400 category with readable messages.
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return apperror.Wrap(apperror.ErrInvalidInput, validator.FormatValidationError(err))
	}
	return nil
}

// requireUser fetches the authenticated user placed by the auth
// middleware.
func requireUser(c *gin.Context) (*model.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, "user not authenticated")
	}
	return user, nil
}
