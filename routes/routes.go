package routes

import (
	"github.com/gorilla/mux"

	"github.com/ali-alhashim/next-it/handlers"
	"github.com/ali-alhashim/next-it/middleware"
	"github.com/ali-alhashim/next-it/websocket"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly  = []string{"GET", "OPTIONS"}
	MethodsPostOnly = []string{"POST", "OPTIONS"}
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// HEALTH CHECK (Public)
	// ====================
	r.HandleFunc("/health", handlers.HealthCheck).Methods(MethodsGetOnly...)

	// ====================
	// AUTHENTICATION ROUTES (Public - No auth required)
	// ====================
	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/logout", handlers.Logout).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/validate", handlers.ValidateToken).Methods(MethodsGetOnly...)

	// Stored user photos (public, served by name)
	r.HandleFunc("/uploads/{photoName}", handlers.ServeUpload).Methods(MethodsGetOnly...)

	// ====================
	// PROTECTED API ROUTES (Require authentication)
	// ====================
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.AuthMiddleware)

	// ====================
	// USER MANAGEMENT
	// ====================
	apiRouter.HandleFunc("/users", handlers.ListUsers).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users/new", handlers.CreateUser).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/users/import", handlers.ImportUsers).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/users/export", handlers.ExportUsers).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users/reset-password/{badgeNumber}", handlers.ResetPassword).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/users/{badgeNumber}", handlers.GetUser).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/user/me", handlers.GetCurrentUser).Methods(MethodsGetOnly...)

	// ====================
	// DEVICES
	// ====================
	apiRouter.HandleFunc("/devices", handlers.ListDevices).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/devices/new", handlers.CreateDevice).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/devices/import", handlers.ImportDevices).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/devices/import-users", handlers.ImportDeviceUsers).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/devices/export", handlers.ExportDevices).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/devices/send-handover-request", handlers.SendHandoverRequest).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/devices/{serialNumber}", handlers.GetDevice).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/devices/{serialNumber}/users", handlers.AssignUser).Methods(MethodsPostOnly...)

	// ====================
	// REALTIME EVENTS
	// ====================
	apiRouter.HandleFunc("/events", websocket.ServeEvents).Methods("GET")
}
