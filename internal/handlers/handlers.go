package handlers

import (
	"github.com/nwang/babypoll/internal/auth"
	"github.com/nwang/babypoll/internal/services"
	"github.com/nwang/babypoll/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Gate    services.GateServicer
	Event   services.EventServicer
	Results services.ResultsServicer
	Admin   services.AdminServicer
	Auth    *auth.Auth
	Hub     *websocket.Hub
	Log     HTTPLogger
	EventID int64
	BaseURL string
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	gate services.GateServicer,
	event services.EventServicer,
	results services.ResultsServicer,
	admin services.AdminServicer,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
	eventID int64,
	baseURL string,
) *Handlers {
	return &Handlers{
		Gate:    gate,
		Event:   event,
		Results: results,
		Admin:   admin,
		Auth:    adminAuth,
		Hub:     hub,
		Log:     log,
		EventID: eventID,
		BaseURL: baseURL,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance with a known admin password
func NewForTesting(
	gate services.GateServicer,
	event services.EventServicer,
	results services.ResultsServicer,
	admin services.AdminServicer,
	eventID int64,
) *Handlers {
	return &Handlers{
		Gate:    gate,
		Event:   event,
		Results: results,
		Admin:   admin,
		Auth:    auth.New("test-password"),
		Log:     NoopHTTPLogger{},
		EventID: eventID,
		BaseURL: "http://localhost:8080",
	}
}
