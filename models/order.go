package models

import "time"

// OrderStatus represents all possible states of a clubhouse order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	CourseID     uint        `json:"course_id" gorm:"not null"`
	Course       Course      `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	UserID       *uint       `json:"user_id"` // nil for guest orders
	User         *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CustomerName string      `json:"customer_name" gorm:"not null"`
	TeeOffTime   string      `json:"tee_off_time"`
	Status       OrderStatus `json:"status" gorm:"not null;default:'pending'"`
	// Always recomputed server-side from Items; client-supplied totals are ignored.
	Total         float64              `json:"total"`
	Items         []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	OrderID    uint    `json:"order_id" gorm:"not null"`
	MenuItemID uint    `json:"menu_item_id" gorm:"not null"`
	Quantity   int     `json:"quantity" gorm:"not null"`
	Price      float64 `json:"price" gorm:"not null"` // snapshot price at time of order
	Name       string  `json:"name"`                  // snapshot name
}

// OrderStatusHistory tracks every status change for the kitchen audit trail
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition, 0 for guests
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

// RecomputeTotal sums line totals from the denormalized items.
func (o *Order) RecomputeTotal() {
	var total float64
	for _, it := range o.Items {
		total += it.Price * float64(it.Quantity)
	}
	o.Total = total
}
