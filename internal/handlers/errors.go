package handlers

import (
	"errors"

	"care4-server/internal/forms"
	"care4-server/internal/models"
	"care4-server/internal/services"
	"care4-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps pipeline and form errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var validationErr *forms.ValidationError
	var configErr *forms.ConfigurationError
	var persistenceErr *services.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		utils.UnprocessableEntity(c, "Please correct the highlighted fields", validationErr.Fields)
	case errors.Is(err, forms.ErrSubmitInProgress):
		utils.Conflict(c, "A submission for this form is already in progress")
	case errors.Is(err, services.ErrAlreadyRegistered):
		utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, models.ErrUnknownFormType):
		utils.BadRequest(c, err.Error())
	case errors.As(err, &persistenceErr):
		utils.BadGateway(c, "A backing service failed, please retry")
	case errors.As(err, &configErr):
		utils.InternalServerError(c, configErr.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
