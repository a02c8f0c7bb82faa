package main

import (
	"log"
	"net/http"

	"clubhouse-orders-api/auth"
	"clubhouse-orders-api/config"
	"clubhouse-orders-api/handlers"
	"clubhouse-orders-api/notify"
	"clubhouse-orders-api/routes"
	"clubhouse-orders-api/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	log.Println("Database connected and migrated")

	hasher := auth.NewHasher()
	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	notifier := notify.NewService(buildDispatcher(cfg))

	deps := routes.Deps{
		Tokens: tokens,
		Users:  st.Users,
		Auth: &handlers.AuthHandler{
			Users:      st.Users,
			Courses:    st.Courses,
			Hasher:     hasher,
			Tokens:     tokens,
			Notify:     notifier,
			ResetTTL:   cfg.ResetCodeTTL,
			AdminEmail: cfg.AdminEmail,
		},
		Profile: &handlers.ProfileHandler{Users: st.Users, Hasher: hasher, Notify: notifier},
		Courses: &handlers.CourseHandler{Courses: st.Courses},
		Menu:    &handlers.MenuHandler{Menu: st.Menu},
		Orders: &handlers.OrderHandler{
			Orders:  st.Orders,
			Courses: st.Courses,
			Users:   st.Users,
			Notify:  notifier,
		},
		UserAdmin: &handlers.UserAdminHandler{
			Users:   st.Users,
			Courses: st.Courses,
			Hasher:  hasher,
			Notify:  notifier,
		},
	}

	r := gin.Default()

	// CORS middleware for the web app
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	routes.SetupRoutes(r, deps)

	log.Printf("Server running on http://localhost:%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// buildDispatcher wires the outbound channels that have credentials;
// with none configured everything goes to the log.
func buildDispatcher(cfg *config.Config) notify.Dispatcher {
	var channels notify.Fanout
	if cfg.ResendAPIKey != "" {
		channels = append(channels, notify.NewEmailSender(cfg.ResendAPIKey, cfg.FromEmail))
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		channels = append(channels, notify.NewWhatsAppSender(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, cfg.DefaultCountryCode))
	}
	if len(channels) == 0 {
		return notify.LogDispatcher{}
	}
	return channels
}
