package handlers

import (
	"context"
	"net/http"

	"clubhouse-orders-api/auth"
	"clubhouse-orders-api/middleware"
	"clubhouse-orders-api/notify"
	"clubhouse-orders-api/store"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	Users  *store.Users
	Hasher *auth.Hasher
	Notify *notify.Service
}

// GetProfile returns the caller's own profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"name":              user.Name,
		"display_name":      displayName(user),
		"phone":             user.Phone,
		"membership_number": user.MembershipNumber,
		"role":              user.Role,
	})
}

type UpdateProfileRequest struct {
	DisplayName      *string `json:"display_name"`
	Phone            *string `json:"phone"`
	MembershipNumber *string `json:"membership_number"`
}

// UpdateProfile applies the whitelisted optional fields.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.DisplayName != nil {
		fields["display_name"] = *req.DisplayName
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.MembershipNumber != nil {
		fields["membership_number"] = *req.MembershipNumber
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data to update"})
		return
	}

	if err := h.Users.Updates(user.ID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	updated, err := h.Users.ByID(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"profile": gin.H{
			"display_name":      displayName(updated),
			"phone":             updated.Phone,
			"membership_number": updated.MembershipNumber,
		},
	})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword verifies the current password before replacing it.
// The new hash always uses the primary scheme, so a change also
// migrates legacy digests.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.Hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}

	hash, err := h.Hasher.Hash(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := h.Users.Updates(user.ID, map[string]interface{}{
		"password_hash":    hash,
		"password_changed": true,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	h.Notify.Go("password changed", func(ctx context.Context, d notify.Dispatcher) error {
		return d.SendPasswordChanged(ctx, user.Email, user.Name)
	})

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
