package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	CountryHandler      *CountryHandler
	ApplicationHandler  *ApplicationHandler
	SubscriptionHandler *SubscriptionHandler
	ProbabilityHandler  *ProbabilityHandler
	NotificationHandler *NotificationHandler
	ChatHandler         *ChatHandler
	DocumentHandler     *DocumentHandler
}
