package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"clubhouse-orders-api/auth"
	"clubhouse-orders-api/handlers"
	"clubhouse-orders-api/models"
	"clubhouse-orders-api/notify"
	"clubhouse-orders-api/routes"
	"clubhouse-orders-api/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	store  *store.Store
	hasher *auth.Hasher
	tokens *auth.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(":memory:")
	require.NoError(t, err)

	hasher := auth.NewHasher()
	tokens := auth.NewIssuer("test-secret", time.Hour)
	notifier := notify.NewService(notify.LogDispatcher{})

	deps := routes.Deps{
		Tokens: tokens,
		Users:  st.Users,
		Auth: &handlers.AuthHandler{
			Users:    st.Users,
			Courses:  st.Courses,
			Hasher:   hasher,
			Tokens:   tokens,
			Notify:   notifier,
			ResetTTL: 15 * time.Minute,
		},
		Profile:   &handlers.ProfileHandler{Users: st.Users, Hasher: hasher, Notify: notifier},
		Courses:   &handlers.CourseHandler{Courses: st.Courses},
		Menu:      &handlers.MenuHandler{Menu: st.Menu},
		Orders:    &handlers.OrderHandler{Orders: st.Orders, Courses: st.Courses, Users: st.Users, Notify: notifier},
		UserAdmin: &handlers.UserAdminHandler{Users: st.Users, Courses: st.Courses, Hasher: hasher, Notify: notifier},
	}

	r := gin.New()
	routes.SetupRoutes(r, deps)
	return &testServer{router: r, store: st, hasher: hasher, tokens: tokens}
}

// seedUser inserts a user with the given password already hashed.
func (ts *testServer) seedUser(t *testing.T, email, password string, role models.Role, status models.AccountStatus, courseIDs []uint) *models.User {
	t.Helper()
	hash, err := ts.hasher.Hash(password)
	require.NoError(t, err)
	u := &models.User{
		Name:         "Test " + string(role),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		CourseIDs:    courseIDs,
	}
	require.NoError(t, ts.store.Users.Create(u))
	return u
}

func (ts *testServer) seedCourse(t *testing.T, name string, active bool) *models.Course {
	t.Helper()
	c := &models.Course{Name: name, Location: "Somewhere", Active: active}
	require.NoError(t, ts.store.Courses.Create(c))
	return c
}

// tokenFor issues a valid bearer token for the user.
func (ts *testServer) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := ts.tokens.Issue(u.ID)
	require.NoError(t, err)
	return token
}

// do runs a JSON request against the router. Empty token means
// unauthenticated.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func jsonBody(pairs ...interface{}) map[string]interface{} {
	m := map[string]interface{}{}
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i].(string)] = pairs[i+1]
	}
	return m
}
