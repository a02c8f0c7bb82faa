package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"clubhouse-orders-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterApproveLogin(t *testing.T) {
	ts := newTestServer(t)
	super := ts.seedUser(t, "boss@club.test", "superpass", models.RoleSuperuser, models.StatusApproved, nil)

	// Register a new member
	w := ts.do(t, http.MethodPost, "/api/auth/register", "", jsonBody(
		"name", "Pat Member", "email", "Pat@Club.Test", "password", "secret1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "pending", body["status"])
	userID := uint(body["user_id"].(float64))

	// Pending accounts cannot log in, with a distinct reason
	w = ts.do(t, http.MethodPost, "/api/auth/login", "", jsonBody(
		"email", "pat@club.test", "password", "secret1"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decode(t, w)["error"], "pending approval")

	// Superuser approves
	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/approve", userID),
		ts.tokenFor(t, super), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Now login succeeds and returns a usable token
	w = ts.do(t, http.MethodPost, "/api/auth/login", "", jsonBody(
		"email", "pat@club.test", "password", "secret1"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	w = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pat@club.test", decode(t, w)["email"])
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "taken@club.test", "secret1", models.RoleUser, models.StatusApproved, nil)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", jsonBody(
		"name", "Copycat", "email", "TAKEN@club.test", "password", "secret1"))
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", decode(t, w)["error"])
}

func TestLoginRejectedAccount(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "denied@club.test", "secret1", models.RoleUser, models.StatusRejected, nil)

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", jsonBody(
		"email", "denied@club.test", "password", "secret1"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decode(t, w)["error"], "not approved")
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "member@club.test", "secret1", models.RoleUser, models.StatusApproved, nil)

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", jsonBody(
		"email", "member@club.test", "password", "wrongpass"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w)["error"])
}

func TestForgotPasswordDoesNotLeakExistence(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "real@club.test", "secret1", models.RoleUser, models.StatusApproved, nil)

	wKnown := ts.do(t, http.MethodPost, "/api/auth/forgot-password", "",
		jsonBody("email", "real@club.test"))
	wUnknown := ts.do(t, http.MethodPost, "/api/auth/forgot-password", "",
		jsonBody("email", "ghost@club.test"))

	require.Equal(t, http.StatusOK, wKnown.Code)
	require.Equal(t, http.StatusOK, wUnknown.Code)
	assert.Equal(t, wKnown.Body.String(), wUnknown.Body.String())
}

func TestResetPasswordFlow(t *testing.T) {
	ts := newTestServer(t)
	u := ts.seedUser(t, "forgetful@club.test", "oldpass1", models.RoleUser, models.StatusApproved, nil)

	require.NoError(t, ts.store.Users.SetResetCode(u.ID, "123456", time.Now().Add(10*time.Minute)))

	// Verification does not consume the code
	w := ts.do(t, http.MethodPost, "/api/auth/verify-reset-code", "", jsonBody(
		"email", "forgetful@club.test", "code", "123456"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["verified"])

	// Wrong code is rejected
	w = ts.do(t, http.MethodPost, "/api/auth/reset-password", "", jsonBody(
		"email", "forgetful@club.test", "code", "000000", "new_password", "newpass1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Right code resets the password
	w = ts.do(t, http.MethodPost, "/api/auth/reset-password", "", jsonBody(
		"email", "forgetful@club.test", "code", "123456", "new_password", "newpass1"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Single use: the same code no longer works
	w = ts.do(t, http.MethodPost, "/api/auth/reset-password", "", jsonBody(
		"email", "forgetful@club.test", "code", "123456", "new_password", "another1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Old password is dead, new one works
	w = ts.do(t, http.MethodPost, "/api/auth/login", "", jsonBody(
		"email", "forgetful@club.test", "password", "oldpass1"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", jsonBody(
		"email", "forgetful@club.test", "password", "newpass1"))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestResetCodeExpired(t *testing.T) {
	ts := newTestServer(t)
	u := ts.seedUser(t, "slow@club.test", "oldpass1", models.RoleUser, models.StatusApproved, nil)

	require.NoError(t, ts.store.Users.SetResetCode(u.ID, "654321", time.Now().Add(-time.Minute)))

	w := ts.do(t, http.MethodPost, "/api/auth/verify-reset-code", "", jsonBody(
		"email", "slow@club.test", "code", "654321"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "expired")
}
