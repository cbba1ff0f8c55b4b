package adaptor

import (
	"net/http"

	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/utils"

	"go.uber.org/zap"
)

type EnrollmentHandler struct {
	service usecase.EnrollmentService
	log     *zap.Logger
}

func NewEnrollmentHandler(service usecase.EnrollmentService, log *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		log:     log.With(zap.String("handler", "enrollment")),
	}
}

// ListEnrollments handles GET /api/enrollments?host_id=&from=&until=&bucket=&cursor= (protected)
func (h *EnrollmentHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	memberID, ok := utils.GetMemberIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.ListEnrollmentsRequest{
		HostID: query.Get("host_id"),
		From:   query.Get("from"),
		Until:  query.Get("until"),
		Bucket: query.Get("bucket"),
		Cursor: query.Get("cursor"),
	}

	page, err := h.service.ListEnrollments(r.Context(), memberID, req)
	if err != nil {
		writeServiceError(w, h.log, "list enrollments", err)
		return
	}

	utils.ResponseSuccess(w, "success", page)
}
