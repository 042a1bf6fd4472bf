package dto

import "time"

// ProbabilityRequest - входные данные для оценки вероятности одобрения визы
type ProbabilityRequest struct {
	CountryID       string `json:"country_id" validate:"required,uuid"`
	VisaType        string `json:"visa_type" validate:"required,is-visa-type"`
	Age             int    `json:"age" validate:"omitempty,min=0,max=120"`
	PreviousVisas   int    `json:"previous_visas" validate:"omitempty,min=0"`
	PreviousRefusal bool   `json:"previous_refusal"`
}

// ProbabilityResponse - результат оценки
type ProbabilityResponse struct {
	Probability  float64   `json:"probability"`
	ModelVersion string    `json:"model_version"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}
