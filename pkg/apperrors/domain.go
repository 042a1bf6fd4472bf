package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для доменных ошибок бизнес-логики.
*/

// --- Фабричные функции ---

// ErrNotFound - фабрика для ошибки "не найдено" (404).
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - фабрика для невалидных статусов (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// --- Auth & User ---

// ErrInsufficientPermissions - не-админ пытается выполнить админ-действие
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// ErrEmailAlreadyExists - email уже используется
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

// ErrPassportAlreadyExists - номер паспорта уже зарегистрирован
var ErrPassportAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Passport number already registered",
	http.StatusConflict,
)

// ErrInvalidCredentials - неверный email или пароль
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrInvalidToken - неверный или просроченный токен (access, refresh)
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrWeakPassword - пароль слишком слабый
var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

// --- Subscriptions (ядро жизненного цикла) ---

// ErrPlanNotFound - план подписки не найден
var ErrPlanNotFound = New(
	CodeNotFound,
	"subscription",
	"Subscription plan not found",
	http.StatusNotFound,
)

// ErrPlanInactive - план снят с продажи, заявки на него не принимаются
var ErrPlanInactive = New(
	CodeInvalidOperation,
	"subscription",
	"Subscription plan is not active",
	http.StatusBadRequest,
)

// ErrDuplicateRequest - у пользователя уже есть заявка в ожидании одобрения
var ErrDuplicateRequest = New(
	CodeConflict,
	"subscription",
	"A subscription request is already pending approval",
	http.StatusConflict,
)

// ErrAlreadyEntitled - у пользователя уже есть действующая подписка
var ErrAlreadyEntitled = New(
	CodeConflict,
	"subscription",
	"An active subscription already exists",
	http.StatusConflict,
)

// ErrInvalidTransition - операция невозможна в текущем статусе заявки
var ErrInvalidTransition = New(
	CodeInvalidStatus,
	"subscription",
	"Operation not allowed for the current subscription status",
	http.StatusConflict,
)

// ErrSubscriptionNotActive - отмена неактивной подписки
var ErrSubscriptionNotActive = New(
	CodeInvalidOperation,
	"subscription",
	"Subscription is not active",
	http.StatusBadRequest,
)

// ErrSubscriptionRequired - фича доступна только при действующей подписке
var ErrSubscriptionRequired = New(
	CodeForbidden,
	"subscription",
	"Active subscription required",
	http.StatusForbidden,
)

// --- Visa applications ---

// ErrApplicationNotFound - заявка на визу не найдена или принадлежит другому пользователю
var ErrApplicationNotFound = New(
	CodeNotFound,
	"application",
	"Visa application not found",
	http.StatusNotFound,
)

// ErrInvalidApplicationStatus - недопустимый целевой статус заявки
var ErrInvalidApplicationStatus = New(
	CodeInvalidStatus,
	"application",
	"Invalid visa application status",
	http.StatusBadRequest,
)

// ErrTravelDatesInvalid - дата окончания поездки раньше даты начала
var ErrTravelDatesInvalid = New(
	CodeValidationFailed,
	"application",
	"Travel end date must not be before the start date",
	http.StatusBadRequest,
)

// --- Countries & fees ---

// ErrCountryNotFound - страна не найдена в каталоге
var ErrCountryNotFound = New(
	CodeNotFound,
	"country",
	"Country not found",
	http.StatusNotFound,
)

// --- Documents & uploads ---

// ErrFileTooLarge - файл превышает максимальный размер
var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

// ErrInvalidFileType - MIME-тип файла не разрешен
var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// --- Chat ---

// ErrConversationNotFound - диалог не найден
var ErrConversationNotFound = New(
	CodeNotFound,
	"chat",
	"Conversation not found",
	http.StatusNotFound,
)

// ErrConversationAccessDenied - пользователь не является участником диалога
var ErrConversationAccessDenied = New(
	CodeForbidden,
	"chat",
	"Access to conversation denied",
	http.StatusForbidden,
)
