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

// UserAdminHandler covers the superuser-only account management
// surface: listing, creation, approval workflow, role and course
// assignment, and guarded deletion.
type UserAdminHandler struct {
	Users   *store.Users
	Courses *store.Courses
	Hasher  *auth.Hasher
	Notify  *notify.Service
}

// ListUsers returns every account with its default-course name resolved.
func (h *UserAdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Users.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		u := &users[i]
		entry := gin.H{
			"id":                u.ID,
			"email":             u.Email,
			"name":              u.Name,
			"role":              u.Role,
			"status":            u.Status.Normalized(),
			"course_ids":        u.CourseIDs,
			"default_course_id": u.DefaultCourseID,
			"created_at":        u.CreatedAt,
		}
		if u.DefaultCourseID != nil {
			if course, err := h.Courses.ByID(*u.DefaultCourseID); err == nil {
				entry["default_course_name"] = course.Name
			}
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "users": out})
}

type CreateUserRequest struct {
	Email     string      `json:"email" binding:"required,email"`
	Name      string      `json:"name" binding:"required"`
	Role      models.Role `json:"role"`
	CourseIDs []uint      `json:"course_ids"`
}

// CreateUser provisions an account directly. It starts approved with a
// generated one-time password the operator hands to the user.
func (h *UserAdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: user, admin, kitchen, cashier, or superuser"})
		return
	}

	if _, err := h.Users.ByEmail(req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	defaultPassword := lifecycle.DefaultPassword()
	hash, err := h.Hasher.Hash(defaultPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
		Status:       models.StatusApproved,
		CourseIDs:    req.CourseIDs,
	}
	if err := h.Users.Create(&user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":          "User created successfully",
		"user_id":          user.ID,
		"default_password": defaultPassword,
	})
}

type UpdateUserRequest struct {
	Name      *string               `json:"name"`
	Email     *string               `json:"email"`
	Role      *models.Role          `json:"role"`
	CourseIDs *[]uint               `json:"course_ids"`
	Status    *models.AccountStatus `json:"status"`
	Password  *string               `json:"password"`
}

// UpdateUser applies a whitelisted set of optional fields.
func (h *UserAdminHandler) UpdateUser(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.Users.ByID(userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		fields["email"] = store.NormalizeEmail(*req.Email)
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		fields["role"] = *req.Role
	}
	if req.Status != nil {
		switch *req.Status {
		case models.StatusPending, models.StatusApproved, models.StatusRejected:
			fields["status"] = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := h.Hasher.Hash(*req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		fields["password_hash"] = hash
	}

	if len(fields) > 0 {
		if err := h.Users.Updates(userID, fields); err != nil {
			if errors.Is(err, store.ErrEmailTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
	}

	if req.CourseIDs != nil {
		if err := h.Users.SetCourses(userID, *req.CourseIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course assignments"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

// DeleteUser removes an account. Self-deletion and deletion of other
// superusers are refused to prevent privilege lockout.
func (h *UserAdminHandler) DeleteUser(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	target, err := h.Users.ByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if target.ID == caller.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}
	if target.Role == models.RoleSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete superuser accounts"})
		return
	}

	if err := h.Users.Delete(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// ApproveUser moves a pending (or rejected) account to approved and
// notifies the user.
func (h *UserAdminHandler) ApproveUser(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	target, err := h.Users.ByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := lifecycle.CanTransition(target.Status.Normalized(), models.StatusApproved, models.RoleSuperuser); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	if err := h.Users.SetStatus(userID, target.Status, models.StatusApproved, map[string]interface{}{
		"approved_at":      now,
		"rejection_reason": "",
	}); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User status changed concurrently, reload and retry"})
		return
	}

	h.Notify.Go("approval notice", func(ctx context.Context, d notify.Dispatcher) error {
		return d.SendApprovalNotice(ctx, target.Email, target.Name)
	})

	c.JSON(http.StatusOK, gin.H{"message": "User approved successfully", "email": target.Email})
}

type RejectUserRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectUser moves a pending account to rejected. A reason is required
// and included in the notification to the user.
func (h *UserAdminHandler) RejectUser(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RejectUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": lifecycle.ErrReasonRequired.Error()})
		return
	}

	target, err := h.Users.ByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := lifecycle.CanTransition(target.Status.Normalized(), models.StatusRejected, models.RoleSuperuser); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	if err := h.Users.SetStatus(userID, target.Status, models.StatusRejected, map[string]interface{}{
		"rejected_at":      now,
		"rejection_reason": req.Reason,
	}); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User status changed concurrently, reload and retry"})
		return
	}

	h.Notify.Go("rejection notice", func(ctx context.Context, d notify.Dispatcher) error {
		return d.SendRejectionNotice(ctx, target.Email, target.Name, req.Reason)
	})

	c.JSON(http.StatusOK, gin.H{"message": "User rejected", "email": target.Email})
}

type SetRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

func (h *UserAdminHandler) SetRole(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: user, admin, kitchen, cashier, or superuser"})
		return
	}

	if err := h.Users.Updates(userID, map[string]interface{}{"role": req.Role}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully"})
}

type SetCoursesRequest struct {
	CourseIDs []uint `json:"course_ids"`
}

func (h *UserAdminHandler) SetCourses(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SetCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Users.SetCourses(userID, req.CourseIDs); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course assignments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course assignments updated successfully"})
}

type SetDefaultCourseRequest struct {
	DefaultCourseID *uint `json:"default_course_id"`
}

// SetDefaultCourse sets or clears a user's default course. A non-nil
// course must exist and be in the target's assignment set.
func (h *UserAdminHandler) SetDefaultCourse(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SetDefaultCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.Users.ByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if req.DefaultCourseID != nil {
		if _, err := h.Courses.ByID(*req.DefaultCourseID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Course not found"})
			return
		}
		if !target.AssignedTo(*req.DefaultCourseID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is not assigned to this course"})
			return
		}
	}

	if err := h.Users.SetDefaultCourse(userID, req.DefaultCourseID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update default course"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default course updated successfully"})
}
