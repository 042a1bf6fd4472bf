package helpers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Znbmels/visa/internal/models"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateUser создает пользователя в транзакции с автоматическим хешированием пароля
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) error {
	if user.PasswordHash != "" && !strings.HasPrefix(user.PasswordHash, "$2a$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("Не удалось хешировать пароль: %v", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if user.Role == "" {
		user.Role = models.UserRoleUser
	}

	result := db.Create(user)
	if result.Error != nil {
		t.Logf("ОШИБКА: не удалось создать пользователя %s: %v", user.Email, result.Error)
		return result.Error
	}

	return nil
}

// CreateAndLoginUser создает пользователя и логинит его через API
func CreateAndLoginUser(t *testing.T, ts *TestServer, tx *gorm.DB, username, email, password string, role models.UserRole) (string, *models.User) {
	user := &models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   password, // Сырой пароль, CreateUser захеширует
		PassportNumber: fmt.Sprintf("N%d", time.Now().UnixNano()%1e12),
		Role:           role,
	}
	err := CreateUser(t, tx, user)
	assert.NoError(t, err, "Создание тестового пользователя не должно вызывать ошибку")

	loginBody := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	res, bodyStr := ts.SendRequest(t, tx, http.MethodPost, "/api/v1/auth/login", "", loginBody)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Логин должен быть успешным. Ответ: "+bodyStr)

	var loginResponse struct {
		Token string `json:"access_token"`
	}
	err = json.Unmarshal([]byte(bodyStr), &loginResponse)
	assert.NoError(t, err, "Не удалось распарсить JSON")
	assert.NotEmpty(t, loginResponse.Token, "Токен не должен быть пустым")

	log.Printf("✅ [Helper] Создан и залогинен пользователь %s (Role: %s)", email, role)

	// Восстанавливаем сырой пароль (удобно для повторного логина в тестах)
	user.PasswordHash = password

	return loginResponse.Token, user
}

// CreateAndLoginAdmin создает администратора с уникальным email
func CreateAndLoginAdmin(t *testing.T, ts *TestServer, tx *gorm.DB) (string, *models.User) {
	email := fmt.Sprintf("admin_%d@test.com", time.Now().UnixNano())
	username := fmt.Sprintf("admin_%d", time.Now().UnixNano())
	return CreateAndLoginUser(t, ts, tx, username, email, "adminpass123", models.UserRoleAdmin)
}

// CreateAndLoginRegularUser создает обычного пользователя с уникальным email
func CreateAndLoginRegularUser(t *testing.T, ts *TestServer, tx *gorm.DB) (string, *models.User) {
	email := fmt.Sprintf("user_%d@test.com", time.Now().UnixNano())
	username := fmt.Sprintf("user_%d", time.Now().UnixNano())
	return CreateAndLoginUser(t, ts, tx, username, email, "password123", models.UserRoleUser)
}

// CreateTestCountry создает страну в транзакции
func CreateTestCountry(t *testing.T, tx *gorm.DB, name, region string) models.Country {
	country := models.Country{
		Name:               name,
		Region:             region,
		VisaRequirements:   "Паспорт, фото, справка с работы",
		ProcessingTimeDays: 10,
	}
	if err := tx.Create(&country).Error; err != nil {
		t.Fatalf("Не удалось создать тестовую страну: %v", err)
	}
	return country
}

// CreateTestPlan создает тариф подписки в транзакции
func CreateTestPlan(t *testing.T, tx *gorm.DB, name string, price float64, durationDays int) models.SubscriptionPlan {
	plan := models.SubscriptionPlan{
		Name:         name,
		Description:  "Тестовый тариф",
		Price:        price,
		DurationDays: durationDays,
		IsActive:     true,
	}
	if err := tx.Create(&plan).Error; err != nil {
		t.Fatalf("Не удалось создать тестовый тариф: %v", err)
	}
	return plan
}

// GrantSubscription выдает пользователю одобренную активную подписку напрямую в БД
func GrantSubscription(t *testing.T, tx *gorm.DB, userID, planID string, start, end time.Time) models.UserSubscription {
	now := time.Now()
	sub := models.UserSubscription{
		UserID:        userID,
		PlanID:        planID,
		Status:        models.SubscriptionStatusApproved,
		IsActive:      true,
		PaymentStatus: models.PaymentStatusPaid,
		StartDate:     &start,
		EndDate:       &end,
		AppliedAt:     now,
		ProcessedAt:   &now,
	}
	if err := tx.Create(&sub).Error; err != nil {
		t.Fatalf("Не удалось создать тестовую подписку: %v", err)
	}
	return sub
}

// CreateTestApplication создает визовую заявку в транзакции
func CreateTestApplication(t *testing.T, tx *gorm.DB, userID, countryID string, visaType models.VisaType) models.VisaApplication {
	start := time.Now().AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 14)
	application := models.VisaApplication{
		UserID:          userID,
		CountryID:       countryID,
		VisaType:        visaType,
		Status:          models.ApplicationStatusPending,
		TravelStartDate: start,
		TravelEndDate:   end,
	}
	if err := tx.Create(&application).Error; err != nil {
		t.Fatalf("Не удалось создать тестовую заявку: %v", err)
	}
	return application
}
