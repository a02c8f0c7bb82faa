package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"clubhouse-orders-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderItems() []map[string]interface{} {
	return []map[string]interface{}{
		{"menu_item_id": 1, "name": "Club Sandwich", "price": 85.0, "quantity": 2},
		{"menu_item_id": 2, "name": "Iced Tea", "price": 30.0, "quantity": 1},
	}
}

func TestStateMachineInfoIsPublic(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/state-machine", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["state_machine"])
	assert.Len(t, body["terminal_states"], 2)
}

func TestGuestOrderTotalRecomputed(t *testing.T) {
	ts := newTestServer(t)
	course := ts.seedCourse(t, "North Links", true)

	// The client-supplied total is ignored
	w := ts.do(t, http.MethodPost, "/api/orders", "", jsonBody(
		"items", orderItems(),
		"customer_name", "Walk-in Guest",
		"tee_off_time", "09:30",
		"course_id", course.ID,
		"total", 1.0))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, 200.0, order["total"])
	assert.Equal(t, "pending", order["status"])
	assert.Nil(t, order["user_id"])
}

func TestGuestOrderRequiresItems(t *testing.T) {
	ts := newTestServer(t)
	course := ts.seedCourse(t, "North Links", true)

	w := ts.do(t, http.MethodPost, "/api/orders", "", jsonBody(
		"items", []map[string]interface{}{},
		"customer_name", "Guest",
		"course_id", course.ID))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKitchenFlowAndCashierCompletion(t *testing.T) {
	ts := newTestServer(t)
	course := ts.seedCourse(t, "North Links", true)
	kitchen := ts.seedUser(t, "chef@club.test", "chefpass", models.RoleKitchen, models.StatusApproved, []uint{course.ID})
	cashier := ts.seedUser(t, "till@club.test", "tillpass", models.RoleCashier, models.StatusApproved, []uint{course.ID})

	w := ts.do(t, http.MethodPost, "/api/orders", "", jsonBody(
		"items", orderItems(), "customer_name", "Guest", "course_id", course.ID))
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint(decode(t, w)["order"].(map[string]interface{})["id"].(float64))
	statusPath := fmt.Sprintf("/api/orders/%d/status", orderID)

	kitchenToken := ts.tokenFor(t, kitchen)

	// Kitchen cannot skip straight to ready
	w = ts.do(t, http.MethodPatch, statusPath, kitchenToken, jsonBody("status", "ready"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "valid_next_states")

	w = ts.do(t, http.MethodPatch, statusPath, kitchenToken, jsonBody("status", "preparing"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPatch, statusPath, kitchenToken, jsonBody("status", "ready"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A fresh read reflects the new status
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), kitchenToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode(t, w)["order"].(map[string]interface{})["status"])

	// Kitchen cannot complete; that is the cashier's move
	w = ts.do(t, http.MethodPatch, statusPath, kitchenToken, jsonBody("status", "completed"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, statusPath, ts.tokenFor(t, cashier), jsonBody("status", "completed"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "completed", order["status"])

	// The audit trail recorded every hop
	history := order["status_history"].([]interface{})
	assert.Len(t, history, 3)
}

func TestMemberCancelsOwnPendingOrderOnly(t *testing.T) {
	ts := newTestServer(t)
	course := ts.seedCourse(t, "North Links", true)
	member := ts.seedUser(t, "member@club.test", "secret1", models.RoleUser, models.StatusApproved, nil)
	other := ts.seedUser(t, "other@club.test", "secret1", models.RoleUser, models.StatusApproved, nil)
	token := ts.tokenFor(t, member)

	w := ts.do(t, http.MethodPost, "/api/orders/user", token, jsonBody(
		"items", orderItems(), "customer_name", "Pat Member", "course_id", course.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := uint(decode(t, w)["order"].(map[string]interface{})["id"].(float64))
	statusPath := fmt.Sprintf("/api/orders/%d/status", orderID)

	// Another member cannot touch it
	w = ts.do(t, http.MethodPatch, statusPath, ts.tokenFor(t, other), jsonBody("status", "cancelled"))
	require.Equal(t, http.StatusForbidden, w.Code)

	// Members cannot drive the kitchen flow
	w = ts.do(t, http.MethodPatch, statusPath, token, jsonBody("status", "preparing"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Cancelling their own pending order works
	w = ts.do(t, http.MethodPatch, statusPath, token, jsonBody("status", "cancelled"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Once cancelled nothing else is reachable
	w = ts.do(t, http.MethodPatch, statusPath, token, jsonBody("status", "pending"))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrdersScopedToAssignedCourses(t *testing.T) {
	ts := newTestServer(t)
	courseA := ts.seedCourse(t, "North Links", true)
	courseB := ts.seedCourse(t, "South Links", true)
	kitchenA := ts.seedUser(t, "chef-a@club.test", "chefpass", models.RoleKitchen, models.StatusApproved, []uint{courseA.ID})
	unassigned := ts.seedUser(t, "chef-none@club.test", "chefpass", models.RoleKitchen, models.StatusApproved, nil)
	super := ts.seedUser(t, "boss@club.test", "superpass", models.RoleSuperuser, models.StatusApproved, nil)

	for _, course := range []*models.Course{courseA, courseA, courseB} {
		w := ts.do(t, http.MethodPost, "/api/orders", "", jsonBody(
			"items", orderItems(), "customer_name", "Guest", "course_id", course.ID))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// Assigned staff see only their course's orders
	w := ts.do(t, http.MethodGet, "/api/orders", ts.tokenFor(t, kitchenA), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decode(t, w)["count"])

	// Staff with no assignments see nothing, not everything
	w = ts.do(t, http.MethodGet, "/api/orders", ts.tokenFor(t, unassigned), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["count"])

	// Requesting a course outside the assignment set is refused
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/orders?course_id=%d", courseB.ID),
		ts.tokenFor(t, kitchenA), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Superusers see all courses
	w = ts.do(t, http.MethodGet, "/api/orders", ts.tokenFor(t, super), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 3.0, body["count"])
	summary := body["order_summary"].(map[string]interface{})
	assert.Equal(t, 3.0, summary["pending"])

	// Members are not staff
	member := ts.seedUser(t, "member@club.test", "secret1", models.RoleUser, models.StatusApproved, nil)
	w = ts.do(t, http.MethodGet, "/api/orders", ts.tokenFor(t, member), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestMyOrdersAndOwnershipOnGet(t *testing.T) {
	ts := newTestServer(t)
	course := ts.seedCourse(t, "North Links", true)
	member := ts.seedUser(t, "member@club.test", "secret1", models.RoleUser, models.StatusApproved, nil)
	other := ts.seedUser(t, "other@club.test", "secret1", models.RoleUser, models.StatusApproved, nil)
	token := ts.tokenFor(t, member)

	w := ts.do(t, http.MethodPost, "/api/orders/user", token, jsonBody(
		"items", orderItems(), "customer_name", "Pat Member", "course_id", course.ID))
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint(decode(t, w)["order"].(map[string]interface{})["id"].(float64))

	w = ts.do(t, http.MethodGet, "/api/orders/my-orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["count"])

	w = ts.do(t, http.MethodGet, "/api/orders/my-orders", ts.tokenFor(t, other), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["count"])

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), ts.tokenFor(t, other), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSuperuserEditRecomputesTotal(t *testing.T) {
	ts := newTestServer(t)
	course := ts.seedCourse(t, "North Links", true)
	super := ts.seedUser(t, "boss@club.test", "superpass", models.RoleSuperuser, models.StatusApproved, nil)
	token := ts.tokenFor(t, super)

	w := ts.do(t, http.MethodPost, "/api/orders", "", jsonBody(
		"items", orderItems(), "customer_name", "Guest", "course_id", course.ID))
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint(decode(t, w)["order"].(map[string]interface{})["id"].(float64))

	w = ts.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d", orderID), token, jsonBody(
		"customer_name", "Corrected Name",
		"items", []map[string]interface{}{
			{"menu_item_id": 3, "name": "Burger", "price": 120.0, "quantity": 1},
		}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "Corrected Name", order["customer_name"])
	assert.Equal(t, 120.0, order["total"])
	assert.Len(t, order["items"].([]interface{}), 1)

	w = ts.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d", orderID), token, jsonBody())
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
