package handler

import (
	"errors"
	"net/http"

	"clinic-ops-backend/internal/repository"
	"clinic-ops-backend/internal/service"
	"clinic-ops-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy onto HTTP status
// codes, keeping the human-readable cause in the body.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrReasonRequired):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSlotNoLongerAvailable):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSlotInPast),
		errors.Is(err, service.ErrDoctorNotWorking),
		errors.Is(err, service.ErrDoctorInactive),
		errors.Is(err, service.ErrInvalidTransition):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
