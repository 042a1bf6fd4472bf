package models

type UserRole string
type ApplicationStatus string
type VisaType string
type SubscriptionStatus string
type PaymentStatus string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusInReview ApplicationStatus = "in_review"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"

	VisaTypeTourist  VisaType = "tourist"
	VisaTypeWork     VisaType = "work"
	VisaTypeStudy    VisaType = "study"
	VisaTypeBusiness VisaType = "business"

	// Жизненный цикл заявки на подписку: pending -> approved|rejected (админ),
	// approved -> expired (по времени). Отмена статус не меняет, только is_active.
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusApproved  SubscriptionStatus = "approved"
	SubscriptionStatusRejected  SubscriptionStatus = "rejected"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ValidVisaTypes - допустимые типы виз (для валидации и калькулятора стоимости)
var ValidVisaTypes = []VisaType{VisaTypeTourist, VisaTypeWork, VisaTypeStudy, VisaTypeBusiness}

// IsValidVisaType проверяет тип визы
func IsValidVisaType(v VisaType) bool {
	for _, t := range ValidVisaTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ValidApplicationStatuses - допустимые статусы заявки на визу
var ValidApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusInReview,
	ApplicationStatusApproved,
	ApplicationStatusRejected,
}

// IsValidApplicationStatus проверяет статус заявки
func IsValidApplicationStatus(s ApplicationStatus) bool {
	for _, st := range ValidApplicationStatuses {
		if st == s {
			return true
		}
	}
	return false
}
