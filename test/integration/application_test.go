package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/test/helpers"

	"github.com/stretchr/testify/assert"
)

// TestApplication_UserFlow - создание, просмотр и редактирование заявки на визу
func TestApplication_UserFlow(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, _ := helpers.CreateAndLoginRegularUser(t, ts, tx)
	country := helpers.CreateTestCountry(t, tx, "Германия", "Европа")

	start := time.Now().AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 14)
	createBody := map[string]interface{}{
		"country_id":           country.ID,
		"visa_type":            "tourist",
		"purpose_of_travel":    "Туристическая поездка по Баварии",
		"travel_start_date":    start.Format(time.RFC3339),
		"travel_end_date":      end.Format(time.RFC3339),
		"number_of_applicants": 2,
	}

	res, bodyStr := ts.SendRequest(t, tx, "POST", "/api/v1/applications", userToken, createBody)
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"status":"pending"`)

	var created struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &created))
	t.Logf("ЗАЯВКИ (User): POST /applications (201) - Успешно.")

	// Даты наоборот - ошибка
	badBody := map[string]interface{}{
		"country_id":           country.ID,
		"visa_type":            "tourist",
		"purpose_of_travel":    "Поездка",
		"travel_start_date":    end.Format(time.RFC3339),
		"travel_end_date":      start.Format(time.RFC3339),
		"number_of_applicants": 1,
	}
	res, _ = ts.SendRequest(t, tx, "POST", "/api/v1/applications", userToken, badBody)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	t.Logf("ЗАЯВКИ (User): неверный порядок дат (400) - Успешно.")

	// Свои заявки
	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/applications", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, created.ID)
	assert.Contains(t, bodyStr, `"total":1`)

	// Редактирование pending-заявки
	res, bodyStr = ts.SendRequest(t, tx, "PUT", "/api/v1/applications/"+created.ID, userToken, map[string]interface{}{
		"number_of_applicants": 3,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"number_of_applicants":3`)
	t.Logf("ЗАЯВКИ (User): PUT /applications/:id (200) - Успешно.")

	// Чужая заявка недоступна
	otherToken, _ := helpers.CreateAndLoginRegularUser(t, ts, tx)
	res, _ = ts.SendRequest(t, tx, "GET", "/api/v1/applications/"+created.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	t.Logf("ЗАЯВКИ (User): чужая заявка (404) - Успешно.")
}

// TestApplication_AdminStatusFlow - смена статуса админом и защита от редактирования
func TestApplication_AdminStatusFlow(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, user := helpers.CreateAndLoginRegularUser(t, ts, tx)
	adminToken, _ := helpers.CreateAndLoginAdmin(t, ts, tx)
	country := helpers.CreateTestCountry(t, tx, "Канада", "Северная Америка")
	application := helpers.CreateTestApplication(t, tx, user.ID, country.ID, models.VisaTypeWork)

	// Админ видит заявку в общем списке
	res, bodyStr := ts.SendRequest(t, tx, "GET", "/api/v1/admin/applications?status=pending", adminToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, application.ID)

	// Перевод в in_review
	res, bodyStr = ts.SendRequest(t, tx, "PUT", "/api/v1/admin/applications/"+application.ID+"/status", adminToken, map[string]interface{}{
		"status": "in_review",
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"status":"in_review"`)
	t.Logf("ЗАЯВКИ (Admin): PUT /status in_review (200) - Успешно.")

	// Не-pending заявку владелец больше не редактирует
	res, _ = ts.SendRequest(t, tx, "PUT", "/api/v1/applications/"+application.ID, userToken, map[string]interface{}{
		"number_of_applicants": 5,
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	t.Logf("ЗАЯВКИ (User): редактирование in_review заявки (409) - Успешно.")

	// Одобрение с комментарием: назначается decision_date
	res, bodyStr = ts.SendRequest(t, tx, "PUT", "/api/v1/admin/applications/"+application.ID+"/status", adminToken, map[string]interface{}{
		"status":         "approved",
		"admin_comments": "Документы в порядке",
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"decision_date"`)
	assert.Contains(t, bodyStr, "Документы в порядке")
	t.Logf("ЗАЯВКИ (Admin): PUT /status approved (200) - Успешно.")

	// Статистика
	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/admin/applications/stats", adminToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"approved":1`)
	t.Logf("ЗАЯВКИ (Admin): GET /stats (200) - Успешно.")

	// Не-админ не попадает в админ-роуты
	res, _ = ts.SendRequest(t, tx, "GET", "/api/v1/admin/applications", userToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

// TestCountry_FeesAndCostEstimate - сборы и калькулятор стоимости
func TestCountry_FeesAndCostEstimate(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, _ := helpers.CreateAndLoginRegularUser(t, ts, tx)
	adminToken, _ := helpers.CreateAndLoginAdmin(t, ts, tx)
	country := helpers.CreateTestCountry(t, tx, "Япония", "Азия")

	// Админ устанавливает сборы
	res, bodyStr := ts.SendRequest(t, tx, "PUT", "/api/v1/admin/countries/"+country.ID+"/fees", adminToken, map[string]interface{}{
		"visa_type":    "tourist",
		"consular_fee": 80,
		"service_fee":  20,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"total_fee":100`)
	t.Logf("СТРАНЫ (Admin): PUT /fees (200) - Успешно.")

	// Сборы видны в справочнике
	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/countries/"+country.ID+"/fees", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"consular_fee":80`)

	// Админ правит срок рассмотрения
	res, bodyStr = ts.SendRequest(t, tx, "PUT", "/api/v1/admin/countries/"+country.ID, adminToken, map[string]interface{}{
		"processing_time_days": 21,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"processing_time_days":21`)
	t.Logf("СТРАНЫ (Admin): PUT /countries/:id (200) - Успешно.")

	// Калькулятор: 100 за заявителя * 3
	res, bodyStr = ts.SendRequest(t, tx, "POST", "/api/v1/visa-cost", userToken, map[string]interface{}{
		"country_id":           country.ID,
		"visa_type":            "tourist",
		"number_of_applicants": 3,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"fee_per_applicant":100`)
	assert.Contains(t, bodyStr, `"total_cost":300`)
	t.Logf("СТРАНЫ (User): POST /visa-cost (200) - Успешно.")

	// Для типа визы без тарифа - 404
	res, _ = ts.SendRequest(t, tx, "POST", "/api/v1/visa-cost", userToken, map[string]interface{}{
		"country_id":           country.ID,
		"visa_type":            "work",
		"number_of_applicants": 1,
	})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	t.Logf("СТРАНЫ (User): расчет без тарифа (404) - Успешно.")
}
