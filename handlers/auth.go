package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"clubhouse-orders-api/auth"
	"clubhouse-orders-api/lifecycle"
	"clubhouse-orders-api/middleware"
	"clubhouse-orders-api/models"
	"clubhouse-orders-api/notify"
	"clubhouse-orders-api/store"

	"github.com/gin-gonic/gin"
)

// AuthHandler owns registration, login and the password-reset flow.
type AuthHandler struct {
	Users      *store.Users
	Courses    *store.Courses
	Hasher     *auth.Hasher
	Tokens     *auth.Issuer
	Notify     *notify.Service
	ResetTTL   time.Duration
	AdminEmail string
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	CourseID *uint  `json:"course_id"`
}

// Register creates a new account in pending state. Approval by a
// superuser is required before login works.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Courtesy pre-check; the store's unique index is the real guard
	if _, err := h.Users.ByEmail(req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Status:       models.StatusPending,
	}
	if req.CourseID != nil {
		user.CourseIDs = []uint{*req.CourseID}
	}

	if err := h.Users.Create(&user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	h.alertSuperusers(user)
	h.Notify.Go("welcome", func(ctx context.Context, d notify.Dispatcher) error {
		return d.SendWelcome(ctx, user.Email, user.Name)
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration submitted. Your account is pending approval by the administrator.",
		"user_id": user.ID,
		"status":  models.StatusPending,
	})
}

// alertSuperusers notifies every superuser (and the configured admin
// address) that a registration is awaiting approval.
func (h *AuthHandler) alertSuperusers(user models.User) {
	recipients := map[string]bool{}
	if h.AdminEmail != "" {
		recipients[h.AdminEmail] = true
	}
	if supers, err := h.Users.ByRole(models.RoleSuperuser); err == nil {
		for _, su := range supers {
			recipients[su.Email] = true
		}
	}
	for addr := range recipients {
		addr := addr
		h.Notify.Go("registration alert", func(ctx context.Context, d notify.Dispatcher) error {
			return d.SendRegistrationAlert(ctx, addr, user.Name, user.Email)
		})
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an approved user and returns a bearer token.
// Pending and rejected accounts fail with distinct reasons.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.ByEmail(req.Email)
	if err != nil || !h.Hasher.Verify(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := lifecycle.CanLogin(user.Status); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    h.userSummary(user),
	})
}

func (h *AuthHandler) userSummary(user *models.User) gin.H {
	summary := gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"name":              user.Name,
		"role":              user.Role,
		"default_course_id": user.DefaultCourseID,
		"profile": gin.H{
			"display_name":      displayName(user),
			"phone":             user.Phone,
			"membership_number": user.MembershipNumber,
		},
	}
	if user.DefaultCourseID != nil {
		if course, err := h.Courses.ByID(*user.DefaultCourseID); err == nil && course.Active {
			summary["default_course"] = gin.H{"id": course.ID, "name": course.Name}
		}
	}
	return summary
}

func displayName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

// Me returns the authenticated user's summary.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a reset code. The response never reveals
// whether the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genericOK := gin.H{"message": "If an account with this email exists, a reset code has been sent"}

	user, err := h.Users.ByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusOK, genericOK)
		return
	}

	code, err := lifecycle.GenerateResetCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate reset code"})
		return
	}

	// Reissue replaces any previously active code
	if err := h.Users.SetResetCode(user.ID, code, time.Now().Add(h.ResetTTL)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store reset code"})
		return
	}

	h.Notify.Go("password reset code", func(ctx context.Context, d notify.Dispatcher) error {
		return d.SendPasswordResetCode(ctx, user.Email, user.Name, code)
	})

	c.JSON(http.StatusOK, genericOK)
}

type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyResetCode checks a code without consuming it.
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req VerifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.ByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or code"})
		return
	}

	if err := lifecycle.ValidateResetCode(user, req.Code, time.Now()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code verified successfully", "verified": true})
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ResetPassword consumes a verified code and sets the new password.
// The code is single-use: it is cleared in the same update that writes
// the new hash.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.ByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := lifecycle.ValidateResetCode(user, req.Code, time.Now()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := h.Hasher.Hash(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := h.Users.ConsumeResetCode(user.ID, req.Code, hash); err != nil {
		// Code was consumed by a concurrent reset
		c.JSON(http.StatusBadRequest, gin.H{"error": lifecycle.ErrResetCodeInvalid.Error()})
		return
	}

	h.Notify.Go("password changed", func(ctx context.Context, d notify.Dispatcher) error {
		return d.SendPasswordChanged(ctx, user.Email, user.Name)
	})

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
