package adaptor

import (
	"errors"
	"net/http"

	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/utils"

	"go.uber.org/zap"
)

// writeServiceError maps usecase sentinel errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, operation string, err error) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" target missing", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrSlotUnavailable):
		log.Info(operation+" lost the slot", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrRescheduleWindow):
		log.Info(operation+" inside lock window", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrUpstream):
		log.Error(operation+" payment gateway failure", zap.Error(err))
		utils.ResponseBadGateway(w, err.Error())

	case errors.Is(err, usecase.ErrPartialCommit):
		// The caller must retry via the ensure-enrollment endpoint; the
		// message carries the order product id needed for that.
		log.Error(operation+" left a paid order uncommitted", zap.Error(err))
		utils.ResponseInternalError(w, err.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
