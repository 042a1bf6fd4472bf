package models

import (
	"time"

	"github.com/lib/pq"
)

type VisaApplication struct {
	BaseModel
	UserID             string            `gorm:"not null;index" json:"user_id"`
	CountryID          string            `gorm:"not null;index" json:"country_id"`
	VisaType           VisaType          `gorm:"type:varchar(20);default:'tourist'" json:"visa_type"`
	PurposeOfTravel    string            `gorm:"type:text;default:'Not specified'" json:"purpose_of_travel"`
	TravelStartDate    time.Time         `json:"travel_start_date"`
	TravelEndDate      time.Time         `json:"travel_end_date"`
	NumberOfApplicants int               `gorm:"default:1" json:"number_of_applicants"`
	Status             ApplicationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Documents          pq.StringArray    `gorm:"type:text[]" json:"documents" swaggerignore:"true"`
	SubmissionDate     time.Time         `gorm:"autoCreateTime" json:"submission_date"`
	DecisionDate       *time.Time        `json:"decision_date,omitempty"`
	AdminComments      string            `gorm:"type:text" json:"admin_comments"`

	// Relations
	Country Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
}

// ApplicationStats - счетчики заявок пользователя по статусам
type ApplicationStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	InReview int64 `json:"in_review"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}
