package store

import (
	"clubhouse-orders-api/models"

	"gorm.io/gorm"
)

type Menu struct {
	db *gorm.DB
}

// List returns menu items, optionally filtered to one course.
func (r *Menu) List(courseID uint) ([]models.MenuItem, error) {
	q := r.db.Model(&models.MenuItem{})
	if courseID != 0 {
		q = q.Where("course_id = ?", courseID)
	}
	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Menu) ByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Menu) Create(item *models.MenuItem) error {
	return r.db.Create(item).Error
}

func (r *Menu) Updates(id uint, fields map[string]interface{}) error {
	res := r.db.Model(&models.MenuItem{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Menu) Delete(id uint) error {
	res := r.db.Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
