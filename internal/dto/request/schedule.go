package request

type CreateScheduleRequest struct {
	StartedAt      string   `json:"started_at" validate:"required"`
	IntervalType   *string  `json:"interval_type,omitempty" validate:"omitempty,oneof=day week month year"`
	IntervalAmount *int     `json:"interval_amount,omitempty" validate:"omitempty,min=1"`
	Excludes       []string `json:"excludes,omitempty"`
}

type UpdateExcludesRequest struct {
	Excludes []string `json:"excludes" validate:"required"`
}
