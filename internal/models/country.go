package models

type Country struct {
	BaseModel
	Name               string `gorm:"size:100;not null" json:"name"`
	Region             string `gorm:"size:50" json:"region"`
	VisaRequirements   string `gorm:"type:text" json:"visa_requirements"`
	ProcessingTimeDays int    `json:"processing_time_days"`
}

// VisaFee - консульский и сервисный сборы для пары страна/тип визы
type VisaFee struct {
	BaseModel
	CountryID    string   `gorm:"not null;index:idx_fee_country_type,unique" json:"country_id"`
	VisaType     VisaType `gorm:"type:varchar(20);not null;index:idx_fee_country_type,unique" json:"visa_type"`
	ConsularFee  float64  `gorm:"not null" json:"consular_fee"`
	ServiceFee   float64  `gorm:"not null" json:"service_fee"`

	// Relations
	Country Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
}

// TotalFee - полная стоимость на одного заявителя
func (f *VisaFee) TotalFee() float64 {
	return f.ConsularFee + f.ServiceFee
}
