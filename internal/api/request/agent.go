package request

type CreateAgent struct {
	Name         string  `json:"name" validate:"required,slug"`
	Frequency    string  `json:"frequency" validate:"required,oneof=Daily Weekly Monthly"`
	DayTime      *string `json:"day_time" validate:"omitempty,day_time"`
	ScheduleTime *string `json:"schedule_time" validate:"omitempty,schedule_time"`
	IsAgent      bool    `json:"is_agent"`
	Active       *bool   `json:"active"`
}

type UpdateAgent struct {
	Name         *string `json:"name" validate:"omitempty,slug"`
	Frequency    *string `json:"frequency" validate:"omitempty,oneof=Daily Weekly Monthly"`
	DayTime      *string `json:"day_time" validate:"omitempty,day_time"`
	ScheduleTime *string `json:"schedule_time" validate:"omitempty,schedule_time"`
	IsAgent      *bool   `json:"is_agent"`
	Active       *bool   `json:"active"`
}
