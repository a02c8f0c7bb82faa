package store

import (
	"strings"
	"time"

	"clubhouse-orders-api/models"

	"gorm.io/gorm"
)

// Users is the user repository. Emails are normalized to lower case on
// every write and lookup so uniqueness is case-insensitive.
type Users struct {
	db *gorm.DB
}

// NormalizeEmail lowers and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *Users) Create(u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	if err := r.db.Create(u).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *Users) ByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Users) ByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", NormalizeEmail(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Users) All() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ByRole returns users holding the given role, used to alert every
// superuser when a registration arrives.
func (r *Users) ByRole(role models.Role) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Updates applies a whitelisted field map to one user.
func (r *Users) Updates(id uint, fields map[string]interface{}) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if strings.Contains(res.Error.Error(), "UNIQUE constraint") {
			return ErrEmailTaken
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus performs a compare-and-set status transition so two
// operators acting on the same account cannot race past each other.
// extra fields (approval timestamps, rejection reason) ride along in
// the same atomic update.
func (r *Users) SetStatus(id uint, from, to models.AccountStatus, extra map[string]interface{}) error {
	fields := map[string]interface{}{"status": to}
	for k, v := range extra {
		fields[k] = v
	}
	res := r.db.Model(&models.User{}).
		Where("id = ? AND (status = ? OR status IS NULL OR status = '')", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetCode stores the single active reset code, replacing any
// previous one.
func (r *Users) SetResetCode(id uint, code string, expires time.Time) error {
	return r.Updates(id, map[string]interface{}{
		"reset_code":         code,
		"reset_code_expires": expires,
	})
}

// ConsumeResetCode sets the new password hash and clears the code in
// one update, guarded on the code still being the active one so it is
// accepted at most once.
func (r *Users) ConsumeResetCode(id uint, code, passwordHash string) error {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND reset_code = ?", id, code).
		Updates(map[string]interface{}{
			"password_hash":      passwordHash,
			"password_changed":   true,
			"reset_code":         "",
			"reset_code_expires": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCourses replaces the assignment set. Goes through a struct update
// so the json serializer on CourseIDs applies.
func (r *Users) SetCourses(id uint, ids []uint) error {
	u, err := r.ByID(id)
	if err != nil {
		return err
	}
	u.CourseIDs = ids
	return r.db.Model(u).Select("course_ids").Updates(u).Error
}

// SetDefaultCourse sets or clears (nil) the default course.
func (r *Users) SetDefaultCourse(id uint, courseID *uint) error {
	u, err := r.ByID(id)
	if err != nil {
		return err
	}
	u.DefaultCourseID = courseID
	return r.db.Model(u).Select("default_course_id").Updates(u).Error
}

func (r *Users) Delete(id uint) error {
	res := r.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
