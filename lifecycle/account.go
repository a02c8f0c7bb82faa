// Package lifecycle governs the account approval workflow:
// self-registration enters pending, a superuser approves or rejects,
// and only approved accounts may log in.
package lifecycle

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"clubhouse-orders-api/models"

	"github.com/google/uuid"
)

var (
	ErrPendingApproval = errors.New("your account is pending approval by the administrator")
	ErrRejected        = errors.New("your account registration was not approved")
	ErrReasonRequired  = errors.New("a rejection reason is required")

	ErrResetCodeInvalid = errors.New("invalid reset code")
	ErrResetCodeExpired = errors.New("reset code has expired")
)

// Transition defines a valid account status change and who may perform it
type Transition struct {
	From  models.AccountStatus
	To    models.AccountStatus
	Actor models.Role
}

// validTransitions is the authoritative state machine definition.
// Re-approval of a rejected account is allowed.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusApproved, Actor: models.RoleSuperuser},
	{From: models.StatusPending, To: models.StatusRejected, Actor: models.RoleSuperuser},
	{From: models.StatusRejected, To: models.StatusApproved, Actor: models.RoleSuperuser},
}

type transitionKey struct {
	From  models.AccountStatus
	To    models.AccountStatus
	Actor models.Role
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// CanTransition checks whether actor may move an account between statuses.
func CanTransition(from, to models.AccountStatus, actor models.Role) error {
	if transitionMap[transitionKey{from, to, actor}] {
		return nil
	}
	return errors.New("invalid account transition: " + string(from) + " to " + string(to) +
		" is not allowed for role '" + string(actor) + "'")
}

// CanLogin gates login on approval status. Pending and rejected fail
// with distinct, user-visible reasons.
func CanLogin(status models.AccountStatus) error {
	switch status.Normalized() {
	case models.StatusApproved:
		return nil
	case models.StatusRejected:
		return ErrRejected
	default:
		return ErrPendingApproval
	}
}

// ResetCodeLength is the number of digits in a password-reset code.
const ResetCodeLength = 6

// GenerateResetCode returns a random 6-digit code. Issuing a new code
// replaces any previously active one.
func GenerateResetCode() (string, error) {
	digits := make([]byte, ResetCodeLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0') + byte(n.Int64())
	}
	return string(digits), nil
}

// ValidateResetCode checks the single active code on a user record.
func ValidateResetCode(u *models.User, code string, now time.Time) error {
	if u.ResetCode == "" || u.ResetCode != code {
		return ErrResetCodeInvalid
	}
	if u.ResetCodeExpires == nil || now.After(*u.ResetCodeExpires) {
		return ErrResetCodeExpired
	}
	return nil
}

// DefaultPassword generates the one-time password for a
// superuser-created account. The user is expected to change it.
func DefaultPassword() string {
	return uuid.NewString()[:8]
}
