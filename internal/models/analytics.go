package models

import (
	"gorm.io/datatypes"
)

// UserAnalytics - сохраненный результат оценки вероятности получения визы
type UserAnalytics struct {
	BaseModel
	UserID                 string         `gorm:"not null;index" json:"user_id"`
	InputData              datatypes.JSON `gorm:"type:jsonb" json:"input_data"`
	PredictedProbability   float64        `json:"predicted_probability"`
	PredictionModelVersion string         `gorm:"size:50" json:"prediction_model_version"`
}
