package request

type CreatePlanRequest struct {
	Title            string  `json:"title" validate:"required,min=1,max=200"`
	DurationMinutes  int     `json:"duration_minutes" validate:"required,min=1,max=1440"`
	Capacity         int     `json:"capacity" validate:"required,min=-1,ne=0"`
	DefaultGateway   string  `json:"default_gateway" validate:"required,oneof=jitsi zoom"`
	RescheduleAmount int     `json:"reschedule_amount" validate:"min=0"`
	RescheduleUnit   string  `json:"reschedule_unit" validate:"omitempty,oneof=minute hour day"`
	ListPrice        float64 `json:"list_price" validate:"min=0"`
	CurrencyID       string  `json:"currency_id" validate:"omitempty,len=3"`
	IsPrivate        bool    `json:"is_private"`
}

type UpdatePlanRequest struct {
	Title            *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	DurationMinutes  *int     `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=1440"`
	Capacity         *int     `json:"capacity,omitempty" validate:"omitempty,min=-1,ne=0"`
	DefaultGateway   *string  `json:"default_gateway,omitempty" validate:"omitempty,oneof=jitsi zoom"`
	RescheduleAmount *int     `json:"reschedule_amount,omitempty" validate:"omitempty,min=0"`
	RescheduleUnit   *string  `json:"reschedule_unit,omitempty" validate:"omitempty,oneof=minute hour day"`
	ListPrice        *float64 `json:"list_price,omitempty" validate:"omitempty,min=0"`
	CurrencyID       *string  `json:"currency_id,omitempty" validate:"omitempty,len=3"`
	IsPrivate        *bool    `json:"is_private,omitempty"`
}
