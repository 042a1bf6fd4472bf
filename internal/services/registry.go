package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	CountryService      CountryService
	ApplicationService  ApplicationService
	SubscriptionService SubscriptionService
	ProbabilityService  ProbabilityService
	NotificationService NotificationService
	ChatService         ChatService
	DocumentService     DocumentService
}
