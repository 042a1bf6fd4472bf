package dto

// CountryResponse - страна из справочника
type CountryResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Region             string `json:"region"`
	VisaRequirements   string `json:"visa_requirements,omitempty"`
	ProcessingTimeDays int    `json:"processing_time_days"`
}

// CreateCountryRequest - добавление страны (только админ)
type CreateCountryRequest struct {
	Name               string `json:"name" validate:"required,min=2,max=100"`
	Region             string `json:"region" validate:"required,max=100"`
	VisaRequirements   string `json:"visa_requirements"`
	ProcessingTimeDays int    `json:"processing_time_days" validate:"omitempty,min=0"`
}

// UpdateCountryRequest - частичное обновление страны (только админ)
type UpdateCountryRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=2,max=100"`
	Region             *string `json:"region" validate:"omitempty,max=100"`
	VisaRequirements   *string `json:"visa_requirements"`
	ProcessingTimeDays *int    `json:"processing_time_days" validate:"omitempty,min=0"`
}

// VisaFeeResponse - консульский и сервисный сборы по типу визы
type VisaFeeResponse struct {
	CountryID   string  `json:"country_id"`
	VisaType    string  `json:"visa_type"`
	ConsularFee float64 `json:"consular_fee"`
	ServiceFee  float64 `json:"service_fee"`
	TotalFee    float64 `json:"total_fee"`
}

// SetVisaFeeRequest - установка сборов для пары страна+тип визы (только админ)
type SetVisaFeeRequest struct {
	VisaType    string  `json:"visa_type" validate:"required,is-visa-type"`
	ConsularFee float64 `json:"consular_fee" validate:"min=0"`
	ServiceFee  float64 `json:"service_fee" validate:"min=0"`
}

// CostEstimateRequest - запрос расчета стоимости визы
type CostEstimateRequest struct {
	CountryID          string `json:"country_id" validate:"required,uuid"`
	VisaType           string `json:"visa_type" validate:"required,is-visa-type"`
	NumberOfApplicants int    `json:"number_of_applicants" validate:"required,min=1,max=20"`
}

// CostEstimateResponse - итоговая стоимость для всех заявителей
type CostEstimateResponse struct {
	CountryID          string  `json:"country_id"`
	VisaType           string  `json:"visa_type"`
	NumberOfApplicants int     `json:"number_of_applicants"`
	FeePerApplicant    float64 `json:"fee_per_applicant"`
	TotalCost          float64 `json:"total_cost"`
}
