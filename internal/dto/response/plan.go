package response

import (
	"time"

	"appointment-booking/internal/data/entity"
)

type PlanResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	DurationMinutes  int        `json:"duration_minutes"`
	Capacity         int        `json:"capacity"`
	DefaultGateway   string     `json:"default_gateway"`
	RescheduleAmount int        `json:"reschedule_amount"`
	RescheduleUnit   string     `json:"reschedule_unit"`
	ListPrice        float64    `json:"list_price"`
	CurrencyID       string     `json:"currency_id"`
	CreatorID        string     `json:"creator_id"`
	IsPrivate        bool       `json:"is_private"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func PlanToResponse(plan *entity.AppointmentPlan) PlanResponse {
	return PlanResponse{
		ID:               plan.ID.String(),
		Title:            plan.Title,
		DurationMinutes:  plan.DurationMinutes,
		Capacity:         plan.Capacity,
		DefaultGateway:   string(plan.DefaultGateway),
		RescheduleAmount: plan.RescheduleAmount,
		RescheduleUnit:   string(plan.RescheduleUnit),
		ListPrice:        plan.ListPrice,
		CurrencyID:       plan.CurrencyID,
		CreatorID:        plan.CreatorID.String(),
		IsPrivate:        plan.IsPrivate,
		PublishedAt:      plan.PublishedAt,
		CreatedAt:        plan.CreatedAt,
	}
}
