package store

import (
	"testing"
	"time"

	"clubhouse-orders-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	return st
}

func TestCreateNormalizesEmail(t *testing.T) {
	st := openTestStore(t)

	u := &models.User{Name: "Alice", Email: "  Alice@Club.COM ", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, st.Users.Create(u))

	found, err := st.Users.ByEmail("ALICE@club.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@club.com", found.Email)
}

func TestDuplicateEmailRejectedByConstraint(t *testing.T) {
	st := openTestStore(t)

	require.NoError(t, st.Users.Create(&models.User{
		Name: "Alice", Email: "alice@club.com", PasswordHash: "x", Role: models.RoleUser,
	}))
	err := st.Users.Create(&models.User{
		Name: "Impostor", Email: "ALICE@CLUB.COM", PasswordHash: "y", Role: models.RoleUser,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSetStatusIsCompareAndSet(t *testing.T) {
	st := openTestStore(t)

	u := &models.User{Name: "Bob", Email: "bob@club.com", PasswordHash: "x",
		Role: models.RoleUser, Status: models.StatusPending}
	require.NoError(t, st.Users.Create(u))

	require.NoError(t, st.Users.SetStatus(u.ID, models.StatusPending, models.StatusApproved, nil))

	// A second operator acting on the stale pending state loses the race
	err := st.Users.SetStatus(u.ID, models.StatusPending, models.StatusRejected, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	reloaded, err := st.Users.ByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, reloaded.Status)
}

func TestConsumeResetCodeIsSingleUse(t *testing.T) {
	st := openTestStore(t)

	u := &models.User{Name: "Cara", Email: "cara@club.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, st.Users.Create(u))
	require.NoError(t, st.Users.SetResetCode(u.ID, "123456", time.Now().Add(15*time.Minute)))

	require.NoError(t, st.Users.ConsumeResetCode(u.ID, "123456", "new-hash"))

	// The code was cleared in the same update that set the hash
	err := st.Users.ConsumeResetCode(u.ID, "123456", "other-hash")
	assert.ErrorIs(t, err, ErrNotFound)

	reloaded, err := st.Users.ByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)
	assert.Empty(t, reloaded.ResetCode)
}

func TestSetCoursesRoundTrips(t *testing.T) {
	st := openTestStore(t)

	u := &models.User{Name: "Dana", Email: "dana@club.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, st.Users.Create(u))

	require.NoError(t, st.Users.SetCourses(u.ID, []uint{3, 7}))

	reloaded, err := st.Users.ByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 7}, reloaded.CourseIDs)
	assert.True(t, reloaded.AssignedTo(7))
	assert.False(t, reloaded.AssignedTo(5))
}

func TestReissuedResetCodeInvalidatesPrevious(t *testing.T) {
	st := openTestStore(t)

	u := &models.User{Name: "Eve", Email: "eve@club.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, st.Users.Create(u))

	expires := time.Now().Add(10 * time.Minute)
	require.NoError(t, st.Users.SetResetCode(u.ID, "111111", expires))
	require.NoError(t, st.Users.SetResetCode(u.ID, "222222", expires))

	// The first code no longer matches the stored one
	require.Error(t, st.Users.ConsumeResetCode(u.ID, "111111", "new-hash"))
	require.NoError(t, st.Users.ConsumeResetCode(u.ID, "222222", "new-hash"))
}
