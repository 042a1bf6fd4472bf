package dto

import "time"

// CreateApplicationRequest представляет тело запроса создания визовой заявки
// @Description Даты поездки передаются в формате RFC3339, дата начала должна быть раньше даты конца
type CreateApplicationRequest struct {
	CountryID          string    `json:"country_id" validate:"required,uuid"`
	VisaType           string    `json:"visa_type" validate:"required,is-visa-type"`
	PurposeOfTravel    string    `json:"purpose_of_travel" validate:"required,min=3,max=1000"`
	TravelStartDate    time.Time `json:"travel_start_date" validate:"required"`
	TravelEndDate      time.Time `json:"travel_end_date" validate:"required"`
	NumberOfApplicants int       `json:"number_of_applicants" validate:"required,min=1,max=20"`
	Documents          []string  `json:"documents"`
}

// UpdateApplicationRequest - редактирование заявки владельцем (пока она pending)
type UpdateApplicationRequest struct {
	PurposeOfTravel    *string    `json:"purpose_of_travel" validate:"omitempty,min=3,max=1000"`
	TravelStartDate    *time.Time `json:"travel_start_date"`
	TravelEndDate      *time.Time `json:"travel_end_date"`
	NumberOfApplicants *int       `json:"number_of_applicants" validate:"omitempty,min=1,max=20"`
	Documents          []string   `json:"documents"`
}

// ChangeApplicationStatusRequest - смена статуса заявки админом
type ChangeApplicationStatusRequest struct {
	Status        string `json:"status" validate:"required,is-application-status"`
	AdminComments string `json:"admin_comments" validate:"omitempty,max=2000"`
}

// ApplicationResponse - заявка на визу
type ApplicationResponse struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	Country            *CountryResponse `json:"country,omitempty"`
	VisaType           string           `json:"visa_type"`
	PurposeOfTravel    string           `json:"purpose_of_travel"`
	TravelStartDate    time.Time        `json:"travel_start_date"`
	TravelEndDate      time.Time        `json:"travel_end_date"`
	NumberOfApplicants int              `json:"number_of_applicants"`
	Status             string           `json:"status"`
	Documents          []string         `json:"documents"`
	SubmissionDate     time.Time        `json:"submission_date"`
	DecisionDate       *time.Time       `json:"decision_date,omitempty"`
	AdminComments      string           `json:"admin_comments,omitempty"`
}

// ApplicationStatsResponse - сводка по статусам заявок (админ-дэшборд)
type ApplicationStatsResponse struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	InReview int64 `json:"in_review"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}
