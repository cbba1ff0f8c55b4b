package request

// ListEnrollmentsRequest is bound from query parameters; timestamps are
// RFC3339 and cursor is the boundary value echoed by the previous page.
type ListEnrollmentsRequest struct {
	HostID string `json:"host_id" validate:"omitempty,uuid4"`
	From   string `json:"from" validate:"omitempty"`
	Until  string `json:"until" validate:"omitempty"`
	Bucket string `json:"bucket" validate:"required,oneof=scheduled canceled finished"`
	Cursor string `json:"cursor" validate:"omitempty"`
}
