package integration_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/Znbmels/visa/test/helpers"

	"github.com/stretchr/testify/assert"
)

// TestProbability_RequiresSubscription - оценка доступна только премиум-пользователям
func TestProbability_RequiresSubscription(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, _ := helpers.CreateAndLoginRegularUser(t, ts, tx)
	country := helpers.CreateTestCountry(t, tx, "Франция", "Европа")

	res, _ := ts.SendRequest(t, tx, "POST", "/api/v1/probability/estimate", userToken, map[string]interface{}{
		"country_id": country.ID,
		"visa_type":  "tourist",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	t.Logf("ВЕРОЯТНОСТЬ: без подписки (403) - Успешно.")
}

// TestProbability_EstimateAndHistory - оценка для подписчика и история запросов
func TestProbability_EstimateAndHistory(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, user := helpers.CreateAndLoginRegularUser(t, ts, tx)
	country := helpers.CreateTestCountry(t, tx, "Германия", "Европа")
	plan := helpers.CreateTestPlan(t, tx, "Вероятность тариф", 19.99, 30)

	start := time.Now().AddDate(0, 0, -1)
	end := start.AddDate(0, 0, 30)
	helpers.GrantSubscription(t, tx, user.ID, plan.ID, start, end)

	// Базовая оценка для Германии
	res, bodyStr := ts.SendRequest(t, tx, "POST", "/api/v1/probability/estimate", userToken, map[string]interface{}{
		"country_id":     country.ID,
		"visa_type":      "tourist",
		"age":            30,
		"previous_visas": 2,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"probability":0.8`)
	assert.Contains(t, bodyStr, `"model_version":"dummy_v1.0"`)
	t.Logf("ВЕРОЯТНОСТЬ: POST /estimate (200) - Успешно.")

	// Прошлый отказ снижает оценку
	res, bodyStr = ts.SendRequest(t, tx, "POST", "/api/v1/probability/estimate", userToken, map[string]interface{}{
		"country_id":       country.ID,
		"visa_type":        "tourist",
		"previous_refusal": true,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"probability":0.65`)
	t.Logf("ВЕРОЯТНОСТЬ: штраф за прошлый отказ - Успешно.")

	// Обе оценки сохранены в истории
	res, bodyStr = ts.SendRequest(t, tx, "GET", "/api/v1/probability/history", userToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"total":2`)
	t.Logf("ВЕРОЯТНОСТЬ: GET /history (200) - Успешно.")
}

// TestProbability_UnknownCountry - для страны вне справочника оценки нет
func TestProbability_UnknownCountry(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	userToken, user := helpers.CreateAndLoginRegularUser(t, ts, tx)
	plan := helpers.CreateTestPlan(t, tx, "Вероятность тариф 2", 19.99, 30)

	start := time.Now().AddDate(0, 0, -1)
	end := start.AddDate(0, 0, 30)
	helpers.GrantSubscription(t, tx, user.ID, plan.ID, start, end)

	res, _ := ts.SendRequest(t, tx, "POST", "/api/v1/probability/estimate", userToken, map[string]interface{}{
		"country_id": "00000000-0000-0000-0000-000000000000",
		"visa_type":  "tourist",
	})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	t.Logf("ВЕРОЯТНОСТЬ: несуществующая страна (404) - Успешно.")
}
