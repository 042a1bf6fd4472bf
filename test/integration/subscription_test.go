package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/test/helpers"

	"github.com/stretchr/testify/assert"
)

// TestSubscription_PublicPlanListing - анонимный пользователь видит активные тарифы
func TestSubscription_PublicPlanListing(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	helpers.CreateTestPlan(t, tx, "Публичный тариф", 9.99, 30)

	res, bodyStr := ts.SendRequest(t, tx, "GET", "/api/v1/plans", "", nil)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"name":"Публичный тариф"`)
	t.Logf("ПОДПИСКИ (Public): GET /plans - Успешно.")
}

// TestSubscription_AdminPlanManagement - E2E флоу админа по управлению тарифами
func TestSubscription_AdminPlanManagement(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	adminToken, _ := helpers.CreateAndLoginAdmin(t, ts, tx)

	// Создание тарифа
	planBody := map[string]interface{}{
		"name":          "Premium Test Plan",
		"description":   "Тестовый премиум",
		"price":         29.99,
		"duration_days": 90,
	}
	res, bodyStr := ts.SendRequest(t, tx, "POST", "/api/v1/admin/plans", adminToken, planBody)
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Ответ: "+bodyStr)

	var createdPlan struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &createdPlan))
	assert.NotEmpty(t, createdPlan.ID)
	t.Logf("ПОДПИСКИ (Admin): POST /admin/plans (201) - Успешно.")

	// Дубликат имени - конфликт
	res, _ = ts.SendRequest(t, tx, "POST", "/api/v1/admin/plans", adminToken, planBody)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	// Обновление
	res, bodyStr = ts.SendRequest(t, tx, "PUT", "/api/v1/admin/plans/"+createdPlan.ID, adminToken, map[string]interface{}{
		"price": 34.99,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"price":34.99`)
	t.Logf("ПОДПИСКИ (Admin): PUT /admin/plans/:id (200) - Успешно.")

	// Деактивация
	res, _ = ts.SendRequest(t, tx, "DELETE", "/api/v1/admin/plans/"+createdPlan.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/plans/"+createdPlan.ID, "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"is_active":false`)
	t.Logf("ПОДПИСКИ (Admin): DELETE /admin/plans/:id (деактивация) - Успешно.")

	// Обычный пользователь не может управлять тарифами
	userToken, _ := helpers.CreateAndLoginRegularUser(t, ts, tx)
	res, _ = ts.SendRequest(t, tx, "POST", "/api/v1/admin/plans", userToken, planBody)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	t.Logf("ПОДПИСКИ (Admin): доступ не-админа (403) - Успешно.")
}

// TestSubscription_RequestApproveFlow - полный жизненный цикл заявки
func TestSubscription_RequestApproveFlow(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, _ := helpers.CreateAndLoginRegularUser(t, ts, tx)
	adminToken, _ := helpers.CreateAndLoginAdmin(t, ts, tx)
	plan := helpers.CreateTestPlan(t, tx, "Флоу тариф", 19.99, 30)

	// Пользователь подает заявку
	res, bodyStr := ts.SendRequest(t, tx, "POST", "/api/v1/subscriptions/request", userToken, map[string]interface{}{
		"plan_id":    plan.ID,
		"auto_renew": true,
	})
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"status":"pending"`)
	assert.Contains(t, bodyStr, `"is_active":false`, "Заявка активируется только после одобрения")

	var created struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &created))
	t.Logf("ПОДПИСКИ (User): POST /subscriptions/request (201) - Успешно.")

	// Вторая заявка при живой первой - конфликт
	res, _ = ts.SendRequest(t, tx, "POST", "/api/v1/subscriptions/request", userToken, map[string]interface{}{
		"plan_id": plan.ID,
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	t.Logf("ПОДПИСКИ (User): дубликат заявки (409) - Успешно.")

	// До одобрения премиума нет
	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/subscriptions/entitlement", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"is_premium":false`)

	// Админ видит заявку в списке pending
	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/admin/subscriptions?status=pending", adminToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, created.ID)

	// Одобрение: назначаются даты, включается подписка
	res, bodyStr = ts.SendRequest(t, tx, "PUT", "/api/v1/admin/subscriptions/"+created.ID+"/approve", adminToken, map[string]interface{}{
		"admin_notes": "оплата подтверждена",
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"status":"approved"`)
	assert.Contains(t, bodyStr, `"start_date"`)
	assert.Contains(t, bodyStr, `"end_date"`)
	t.Logf("ПОДПИСКИ (Admin): PUT /approve (200) - Успешно.")

	// Повторное одобрение - конфликт
	res, _ = ts.SendRequest(t, tx, "PUT", "/api/v1/admin/subscriptions/"+created.ID+"/approve", adminToken, map[string]interface{}{})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	t.Logf("ПОДПИСКИ (Admin): повторное одобрение (409) - Успешно.")

	// Теперь пользователь премиум
	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/subscriptions/entitlement", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"is_premium":true`)
	t.Logf("ПОДПИСКИ (User): GET /entitlement (премиум) - Успешно.")

	// Одобрение зафиксировало платеж
	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/subscriptions/payments", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"status":"paid"`)
	t.Logf("ПОДПИСКИ (User): GET /payments (200) - Успешно.")

	// Отмена: статус остается approved, is_active гаснет
	res, bodyStr = ts.SendRequest(t, tx, "PUT", "/api/v1/subscriptions/cancel", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"status":"approved"`)
	assert.Contains(t, bodyStr, `"is_active":false`)
	assert.Contains(t, bodyStr, `"auto_renew":false`)
	t.Logf("ПОДПИСКИ (User): PUT /cancel (200) - Успешно.")

	// После отмены премиума нет
	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/subscriptions/entitlement", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"is_premium":false`)

	// Повторная отмена - ошибка
	res, _ = ts.SendRequest(t, tx, "PUT", "/api/v1/subscriptions/cancel", userToken, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

// TestSubscription_RejectFlow - отклонение заявки без назначения дат
func TestSubscription_RejectFlow(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, _ := helpers.CreateAndLoginRegularUser(t, ts, tx)
	adminToken, _ := helpers.CreateAndLoginAdmin(t, ts, tx)
	plan := helpers.CreateTestPlan(t, tx, "Реджект тариф", 19.99, 30)

	res, bodyStr := ts.SendRequest(t, tx, "POST", "/api/v1/subscriptions/request", userToken, map[string]interface{}{
		"plan_id": plan.ID,
	})
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &created))

	res, bodyStr = ts.SendRequest(t, tx, "PUT", "/api/v1/admin/subscriptions/"+created.ID+"/reject", adminToken, map[string]interface{}{
		"admin_notes": "оплата не поступила",
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"status":"rejected"`)
	assert.NotContains(t, bodyStr, `"start_date"`, "Отклоненная заявка не получает дат")
	t.Logf("ПОДПИСКИ (Admin): PUT /reject (200) - Успешно.")

	// После отказа можно подать заново
	res, _ = ts.SendRequest(t, tx, "POST", "/api/v1/subscriptions/request", userToken, map[string]interface{}{
		"plan_id": plan.ID,
	})
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	t.Logf("ПОДПИСКИ (User): повторная заявка после отказа (201) - Успешно.")
}

// TestSubscription_DatabaseUniqueIndex - частичный уникальный индекс
// не пускает вторую живую подписку даже прямой вставкой
func TestSubscription_DatabaseUniqueIndex(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, user := helpers.CreateAndLoginRegularUser(t, ts, tx)
	plan := helpers.CreateTestPlan(t, tx, "Индекс тариф", 19.99, 30)

	first := models.UserSubscription{
		UserID:   user.ID,
		PlanID:   plan.ID,
		Status:   models.SubscriptionStatusPending,
		IsActive: false,
	}
	assert.NoError(t, tx.Create(&first).Error)

	// Pending считается живой независимо от is_active
	second := models.UserSubscription{
		UserID:   user.ID,
		PlanID:   plan.ID,
		Status:   models.SubscriptionStatusPending,
		IsActive: false,
	}
	err := tx.Create(&second).Error
	assert.Error(t, err, "Вторая живая подписка должна упереться в уникальный индекс")
	t.Logf("ПОДПИСКИ (DB): uniq_live_subscription - Успешно.")
}

// TestSubscription_ExpiredGrantLosesPremium - подписка с истекшими датами
// не дает премиум еще до прохода воркера
func TestSubscription_ExpiredGrantLosesPremium(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, user := helpers.CreateAndLoginRegularUser(t, ts, tx)
	plan := helpers.CreateTestPlan(t, tx, "Истекший тариф", 19.99, 30)

	start := time.Now().AddDate(0, 0, -60)
	end := start.AddDate(0, 0, 30)
	helpers.GrantSubscription(t, tx, user.ID, plan.ID, start, end)

	res, bodyStr := ts.SendRequest(t, tx, "GET", "/api/v1/subscriptions/entitlement", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"is_premium":false`)
	t.Logf("ПОДПИСКИ (User): истекшие даты без премиума - Успешно.")
}

// TestSubscription_RerequestAfterExpiredApproved - истекшая approved-подписка,
// которую воркер еще не погасил, не блокирует новую заявку
func TestSubscription_RerequestAfterExpiredApproved(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, user := helpers.CreateAndLoginRegularUser(t, ts, tx)
	plan := helpers.CreateTestPlan(t, tx, "Перезаявка тариф", 19.99, 30)

	start := time.Now().AddDate(0, 0, -60)
	end := start.AddDate(0, 0, 30)
	old := helpers.GrantSubscription(t, tx, user.ID, plan.ID, start, end)

	res, bodyStr := ts.SendRequest(t, tx, "POST", "/api/v1/subscriptions/request", userToken, map[string]interface{}{
		"plan_id": plan.ID,
	})
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"status":"pending"`)

	// Мертвая запись погашена, статус и история сохранены
	var stored models.UserSubscription
	assert.NoError(t, tx.First(&stored, "id = ?", old.ID).Error)
	assert.Equal(t, models.SubscriptionStatusApproved, stored.Status)
	assert.False(t, stored.IsActive)
	t.Logf("ПОДПИСКИ (User): перезаявка после истекшей подписки (201) - Успешно.")
}

// TestSubscription_ExpirySweepSkipsCancelled - воркер не перетирает отмену:
// переход в expired ключуется и на is_active
func TestSubscription_ExpirySweepSkipsCancelled(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, user := helpers.CreateAndLoginRegularUser(t, ts, tx)
	plan := helpers.CreateTestPlan(t, tx, "Гонка тариф", 19.99, 30)

	start := time.Now().AddDate(0, 0, -60)
	end := start.AddDate(0, 0, 30)
	sub := helpers.GrantSubscription(t, tx, user.ID, plan.ID, start, end)

	// Пользователь успевает отменить, пока воркер держит снятый ранее список
	res, _ := ts.SendRequest(t, tx, "PUT", "/api/v1/subscriptions/cancel", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	repo := repositories.NewSubscriptionRepository()
	err := repo.MarkExpired(tx, sub.ID)
	assert.ErrorIs(t, err, repositories.ErrSubscriptionStateStale)

	var stored models.UserSubscription
	assert.NoError(t, tx.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SubscriptionStatusApproved, stored.Status, "Отмена не должна перетираться на expired")
	assert.False(t, stored.IsActive)
	t.Logf("ПОДПИСКИ (Worker): отмененная запись не expired - Успешно.")
}
