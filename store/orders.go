package store

import (
	"clubhouse-orders-api/models"

	"gorm.io/gorm"
)

type Orders struct {
	db *gorm.DB
}

// OrderFilter narrows listing queries for the staff screens.
type OrderFilter struct {
	Status    models.OrderStatus
	CourseID  uint
	CourseIDs []uint // assignment-set scoping for non-superuser staff
	UserID    *uint
}

func (r *Orders) Create(o *models.Order) error {
	return r.db.Create(o).Error
}

func (r *Orders) ByID(id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.Preload("Items").Preload("StatusHistory").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Orders) List(f OrderFilter) ([]models.Order, error) {
	q := r.db.Preload("Items")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CourseID != 0 {
		q = q.Where("course_id = ?", f.CourseID)
	}
	if len(f.CourseIDs) > 0 {
		q = q.Where("course_id IN ?", f.CourseIDs)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	var orders []models.Order
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// SetStatus performs a compare-and-set transition and records the
// audit trail entry in the same transaction, so concurrent operators
// cannot both move the same order.
func (r *Orders) SetStatus(id uint, from, to models.OrderStatus, changedBy uint, note string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    id,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  changedBy,
			Note:       note,
		}).Error
	})
}

// ReplaceItems swaps the denormalized line items and stores the
// recomputed total in one transaction.
func (r *Orders) ReplaceItems(id uint, items []models.OrderItem, total float64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = id
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Order{}).Where("id = ?", id).Update("total", total).Error
	})
}

func (r *Orders) Updates(id uint, fields map[string]interface{}) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Orders) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderStatusHistory{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
