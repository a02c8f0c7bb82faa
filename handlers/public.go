package handlers

import (
	"net/http"

	"clubhouse-orders-api/models"
	"clubhouse-orders-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStateMachineInfo publishes the order lifecycle for API consumers.
func GetStateMachineInfo(c *gin.Context) {
	transitions := statemachine.GetAllTransitions()
	info := make([]gin.H, 0, len(transitions))
	for _, t := range transitions {
		info = append(info, gin.H{"from": t.From, "to": t.To, "role": t.Role})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"terminal_states": []models.OrderStatus{models.OrderCompleted, models.OrderCancelled},
		"description":     "Clubhouse Order Lifecycle State Machine",
	})
}
