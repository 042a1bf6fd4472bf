package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Znbmels/visa/test/helpers"

	"github.com/stretchr/testify/assert"
)

// TestAuth_RegisterAndLogin - полный флоу регистрации и входа
func TestAuth_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	email := fmt.Sprintf("register_%d@test.com", time.Now().UnixNano())
	registerBody := map[string]interface{}{
		"username":        fmt.Sprintf("user_%d", time.Now().UnixNano()),
		"email":           email,
		"password":        "strongpass123",
		"passport_number": fmt.Sprintf("P%d", time.Now().UnixNano()%1e10),
		"phone_number":    "+77001234567",
		"region":          "Алматы",
	}

	// Регистрация
	res, bodyStr := ts.SendRequest(t, tx, "POST", "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Регистрация должна быть успешной. Ответ: "+bodyStr)
	assert.Contains(t, bodyStr, `"access_token"`)
	assert.Contains(t, bodyStr, `"refresh_token"`)
	t.Logf("АВТОРИЗАЦИЯ: POST /auth/register (201) - Успешно.")

	// Повторная регистрация с тем же email - конфликт
	res, _ = ts.SendRequest(t, tx, "POST", "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	t.Logf("АВТОРИЗАЦИЯ: повторная регистрация (409) - Успешно.")

	// Вход с верным паролем
	res, bodyStr = ts.SendRequest(t, tx, "POST", "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "strongpass123",
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	t.Logf("АВТОРИЗАЦИЯ: POST /auth/login (200) - Успешно.")

	// Вход с неверным паролем
	res, _ = ts.SendRequest(t, tx, "POST", "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	t.Logf("АВТОРИЗАЦИЯ: вход с неверным паролем (401) - Успешно.")
}

// TestAuth_WeakPasswordRejected - короткий пароль не проходит валидацию
func TestAuth_WeakPasswordRejected(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	registerBody := map[string]interface{}{
		"username":        "shortpass",
		"email":           "shortpass@test.com",
		"password":        "123",
		"passport_number": "P12345678",
	}

	res, _ := ts.SendRequest(t, tx, "POST", "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	t.Logf("АВТОРИЗАЦИЯ: слабый пароль (400) - Успешно.")
}

// TestAuth_RefreshRotatesTokens - обновление пары токенов по refresh-токену
func TestAuth_RefreshRotatesTokens(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	email := fmt.Sprintf("refresh_%d@test.com", time.Now().UnixNano())
	registerBody := map[string]interface{}{
		"username":        fmt.Sprintf("refresh_%d", time.Now().UnixNano()),
		"email":           email,
		"password":        "strongpass123",
		"passport_number": fmt.Sprintf("R%d", time.Now().UnixNano()%1e10),
	}

	res, bodyStr := ts.SendRequest(t, tx, "POST", "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var tokens struct {
		RefreshToken string `json:"refresh_token"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &tokens))
	assert.NotEmpty(t, tokens.RefreshToken)

	// Обновляем пару токенов
	res, bodyStr = ts.SendRequest(t, tx, "POST", "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Refresh должен быть успешным. Ответ: "+bodyStr)

	var newTokens struct {
		RefreshToken string `json:"refresh_token"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &newTokens))
	assert.NotEqual(t, tokens.RefreshToken, newTokens.RefreshToken, "Refresh-токен должен ротироваться")
	t.Logf("АВТОРИЗАЦИЯ: POST /auth/refresh (200, ротация) - Успешно.")

	// Старый refresh-токен больше не работает
	res, _ = ts.SendRequest(t, tx, "POST", "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	t.Logf("АВТОРИЗАЦИЯ: старый refresh-токен (401) - Успешно.")
}

// TestAuth_ProfileAccess - доступ к профилю только с токеном
func TestAuth_ProfileAccess(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	token, user := helpers.CreateAndLoginRegularUser(t, ts, tx)

	// Без токена
	res, _ := ts.SendRequest(t, tx, "GET", "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// С токеном
	res, bodyStr := ts.SendRequest(t, tx, "GET", "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, user.Email)
	assert.Contains(t, bodyStr, `"is_premium":false`)
	t.Logf("АВТОРИЗАЦИЯ: GET /users/me - Успешно.")
}
