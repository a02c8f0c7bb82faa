package store

import (
	"clubhouse-orders-api/models"

	"gorm.io/gorm"
)

type Courses struct {
	db *gorm.DB
}

// Active returns courses visible to guests and members.
func (r *Courses) Active() ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.Where("active = ?", true).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// ActiveByIDs returns active courses restricted to an assignment set.
func (r *Courses) ActiveByIDs(ids []uint) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	var courses []models.Course
	if err := r.db.Where("id IN ? AND active = ?", ids, true).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// All returns every course, inactive ones included.
func (r *Courses) All() ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *Courses) ByID(id uint) (*models.Course, error) {
	var c models.Course
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Courses) Create(c *models.Course) error {
	return r.db.Create(c).Error
}

func (r *Courses) Updates(id uint, fields map[string]interface{}) error {
	res := r.db.Model(&models.Course{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Courses) Delete(id uint) error {
	res := r.db.Delete(&models.Course{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
