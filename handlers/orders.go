package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"clubhouse-orders-api/middleware"
	"clubhouse-orders-api/models"
	"clubhouse-orders-api/notify"
	"clubhouse-orders-api/statemachine"
	"clubhouse-orders-api/store"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Orders  *store.Orders
	Courses *store.Courses
	Users   *store.Users
	Notify  *notify.Service
}

type OrderItemRequest struct {
	MenuItemID uint    `json:"menu_item_id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Price      float64 `json:"price" binding:"gte=0"`
	Quantity   int     `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	CustomerName string             `json:"customer_name" binding:"required"`
	TeeOffTime   string             `json:"tee_off_time"`
	CourseID     uint               `json:"course_id" binding:"required"`
}

// CreateOrder places a guest order. No account needed; the kitchen
// works off the customer name and tee-off time.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := h.buildOrder(req, nil)
	if err := h.Orders.Create(&order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "order": order})
}

// CreateUserOrder places an order tied to the authenticated user and
// sends a confirmation.
func (h *OrderHandler) CreateUserOrder(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := h.buildOrder(req, &user.ID)
	if err := h.Orders.Create(&order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	notice := h.orderNotice(&order, user)
	h.Notify.Go("order confirmation", func(ctx context.Context, d notify.Dispatcher) error {
		return d.SendOrderConfirmation(ctx, notice)
	})

	c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "order": order})
}

// buildOrder assembles the denormalized order. The total is always
// recomputed from the line items; any client-supplied total is ignored.
func (h *OrderHandler) buildOrder(req CreateOrderRequest, userID *uint) models.Order {
	order := models.Order{
		CourseID:     req.CourseID,
		UserID:       userID,
		CustomerName: req.CustomerName,
		TeeOffTime:   req.TeeOffTime,
		Status:       models.OrderPending,
	}
	for _, it := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
		})
	}
	order.RecomputeTotal()
	return order
}

func (h *OrderHandler) orderNotice(order *models.Order, user *models.User) notify.OrderNotice {
	n := notify.OrderNotice{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		TeeOffTime:   order.TeeOffTime,
		Total:        order.Total,
	}
	if user != nil {
		n.Email = user.Email
		n.Phone = user.Phone
	}
	if course, err := h.Courses.ByID(order.CourseID); err == nil {
		n.CourseName = course.Name
	}
	for _, it := range order.Items {
		n.Items = append(n.Items, notify.OrderLine{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return n
}

// ListOrders feeds the kitchen and cashier screens. Non-superuser
// staff only see orders for courses in their assignment set.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)

	filter := store.OrderFilter{Status: models.OrderStatus(c.Query("status"))}
	if raw := c.Query("course_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course_id"})
			return
		}
		if !middleware.CanAccessCourse(user, uint(id)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this course"})
			return
		}
		filter.CourseID = uint(id)
	} else if user.Role != models.RoleSuperuser {
		// Only superusers reach all courses with an empty assignment set
		if len(user.CourseIDs) == 0 {
			c.JSON(http.StatusOK, gin.H{"count": 0, "order_summary": map[string]int{}, "orders": []models.Order{}})
			return
		}
		filter.CourseIDs = user.CourseIDs
	}

	orders, err := h.Orders.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}

	// Dashboard summary grouped by status
	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "order_summary": summary, "orders": orders})
}

// MyOrders returns the caller's own orders.
func (h *OrderHandler) MyOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orders, err := h.Orders.List(store.OrderFilter{UserID: &user.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrder returns one order. Members may only read their own.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.ByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if user.Role == models.RoleUser {
		if order.UserID == nil || *order.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "This is not your order"})
			return
		}
	} else if !middleware.CanAccessCourse(user, order.CourseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus moves an order through the kitchen flow. The
// transition table decides what each role may do; members can only
// cancel their own pending orders.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.ByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if user.Role == models.RoleUser {
		if order.UserID == nil || *order.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "This is not your order"})
			return
		}
	} else if !middleware.CanAccessCourse(user, order.CourseID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this course"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := statemachine.CanTransition(order.Status, req.Status, user.Role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             err.Error(),
			"current_status":    order.Status,
			"requested":         req.Status,
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	if err := h.Orders.SetStatus(orderID, order.Status, req.Status, user.ID, req.Note); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the compare-and-set race against another operator
			c.JSON(http.StatusConflict, gin.H{"error": "Order status changed concurrently, reload and retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	if req.Status == models.OrderReady {
		h.notifyOrderReady(order)
	}

	updated, err := h.Orders.ByID(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"previous_status": order.Status,
		"order":           updated,
	})
}

func (h *OrderHandler) notifyOrderReady(order *models.Order) {
	var owner *models.User
	if order.UserID != nil {
		if u, err := h.Users.ByID(*order.UserID); err == nil {
			owner = u
		}
	}
	if owner == nil {
		// Guest orders have no contact details to notify
		return
	}
	notice := h.orderNotice(order, owner)
	h.Notify.Go("order ready", func(ctx context.Context, d notify.Dispatcher) error {
		return d.SendOrderReady(ctx, notice)
	})
}

type UpdateOrderRequest struct {
	CustomerName *string             `json:"customer_name"`
	TeeOffTime   *string             `json:"tee_off_time"`
	Status       *models.OrderStatus `json:"status"`
	Items        []OrderItemRequest  `json:"items"`
}

// UpdateOrder is the superuser edit endpoint. When items change the
// total is recomputed server-side; there is no way to set it directly.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.ByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.CustomerName != nil {
		fields["customer_name"] = *req.CustomerName
	}
	if req.TeeOffTime != nil {
		fields["tee_off_time"] = *req.TeeOffTime
	}
	if req.Status != nil && *req.Status != order.Status {
		if err := statemachine.CanTransition(order.Status, *req.Status, user.Role); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fields["status"] = *req.Status
	}

	if len(fields) > 0 {
		if err := h.Orders.Updates(orderID, fields); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}
	}

	if req.Items != nil {
		items := make([]models.OrderItem, 0, len(req.Items))
		var total float64
		for _, it := range req.Items {
			items = append(items, models.OrderItem{
				MenuItemID: it.MenuItemID,
				Name:       it.Name,
				Price:      it.Price,
				Quantity:   it.Quantity,
			})
			total += it.Price * float64(it.Quantity)
		}
		if err := h.Orders.ReplaceItems(orderID, items, total); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order items"})
			return
		}
	}

	if len(fields) == 0 && req.Items == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data to update"})
		return
	}

	updated, err := h.Orders.ByID(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": updated})
}

// DeleteOrder removes an order and its line items.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Orders.Delete(orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
