package statemachine

import (
	"errors"

	"clubhouse-orders-api/models"
)

// Transition defines a valid order state change and which role can perform it
type Transition struct {
	From models.OrderStatus
	To   models.OrderStatus
	Role models.Role
}

// validTransitions is the authoritative state machine definition.
// Superusers bypass the table entirely (see CanTransition).
var validTransitions = []Transition{
	// Kitchen works the ticket
	{From: models.OrderPending, To: models.OrderPreparing, Role: models.RoleKitchen},
	{From: models.OrderPreparing, To: models.OrderReady, Role: models.RoleKitchen},
	// Cashier closes out a collected order
	{From: models.OrderReady, To: models.OrderCompleted, Role: models.RoleCashier},
	// Members and guests can cancel before the kitchen starts
	{From: models.OrderPending, To: models.OrderCancelled, Role: models.RoleUser},
	// Course admins can run the whole flow for their courses
	{From: models.OrderPending, To: models.OrderPreparing, Role: models.RoleAdmin},
	{From: models.OrderPreparing, To: models.OrderReady, Role: models.RoleAdmin},
	{From: models.OrderReady, To: models.OrderCompleted, Role: models.RoleAdmin},
	{From: models.OrderPending, To: models.OrderCancelled, Role: models.RoleAdmin},
	{From: models.OrderPreparing, To: models.OrderCancelled, Role: models.RoleAdmin},
}

type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
	Role models.Role
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Role}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given role can move an order between states.
// Superusers may force any change between distinct states.
func CanTransition(from, to models.OrderStatus, role models.Role) error {
	if from == to {
		return errors.New("order is already " + string(from))
	}
	if role == models.RoleSuperuser {
		return nil
	}
	if transitionMap[transitionKey{From: from, To: to, Role: role}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " to " + string(to) +
			" is not allowed for role '" + string(role) + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
