package models

import "time"

// Role defines allowed roles in the system
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleKitchen   Role = "kitchen"
	RoleCashier   Role = "cashier"
	RoleSuperuser Role = "superuser"
)

// ValidRole reports whether r is one of the five known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleKitchen, RoleCashier, RoleSuperuser:
		return true
	}
	return false
}

// AccountStatus tracks the approval state of a registration.
// Records created before the approval workflow existed carry no status;
// Normalized treats those as approved.
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusRejected AccountStatus = "rejected"
)

// Normalized maps the legacy empty status to approved.
func (s AccountStatus) Normalized() AccountStatus {
	if s == "" {
		return StatusApproved
	}
	return s
}

type User struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	Name         string        `json:"name" gorm:"not null"`
	Email        string        `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string        `json:"-" gorm:"not null"`
	Role         Role          `json:"role" gorm:"not null;default:'user'"`
	Status       AccountStatus `json:"status"`

	// Course scoping: admins and staff only see courses in this set.
	// Superusers may hold an empty set and still access everything.
	CourseIDs       []uint `json:"course_ids" gorm:"serializer:json"`
	DefaultCourseID *uint  `json:"default_course_id"`

	DisplayName      string `json:"display_name"`
	Phone            string `json:"phone"`
	MembershipNumber string `json:"membership_number"`

	// Password-reset subflow: one active code at a time, time-bound.
	ResetCode        string     `json:"-"`
	ResetCodeExpires *time.Time `json:"-"`

	// Set once a superuser-created account replaced its default password.
	PasswordChanged bool `json:"password_changed"`

	RejectionReason string     `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignedTo reports whether courseID is in the user's assignment set.
func (u *User) AssignedTo(courseID uint) bool {
	for _, id := range u.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}
