package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nwang/babypoll/internal/auth"
	"github.com/nwang/babypoll/internal/handlers"
	"github.com/nwang/babypoll/internal/logger"
	"github.com/nwang/babypoll/internal/repository"
	"github.com/nwang/babypoll/internal/services"
	"github.com/nwang/babypoll/internal/websocket"
)

// Config holds everything the app needs to provision the poll at startup.
type Config struct {
	DBPath   string
	PIN      string
	Deadline *time.Time
}

// App holds all application dependencies
type App struct {
	log             logger.Logger
	handlers        *handlers.Handlers
	repo            *repository.Repository
	cancelCountdown context.CancelFunc
}

// New creates and initializes a new application instance. The voting event is
// provisioned before any request is served; the PIN and deadline only apply
// on first creation of the event.
func New(log logger.Logger, cfg Config, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	eventService := services.NewEventService(log, repo)
	registryService := services.NewRegistryService(log, repo)
	ballotService := services.NewBallotService(log, repo, eventService)
	resultsService := services.NewResultsService(log, repo, eventService)
	adminService := services.NewAdminService(log, repo, eventService, resultsService)

	eventID, err := eventService.Provision(context.Background(), cfg.PIN, cfg.Deadline)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to provision voting event: %w", err)
	}

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, eventService, resultsService, eventID)
	hub.Start()

	sessions := auth.NewSessionStore()
	gateService := services.NewGateService(log, sessions, eventService, registryService, ballotService, resultsService, hub)

	// Start countdown with context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go hub.StartDeadlineCountdown(ctx)

	h := handlers.New(
		gateService,
		eventService,
		resultsService,
		adminService,
		adminAuth,
		hub,
		log,
		eventID,
		"",
	)

	return &App{
		log:             log,
		handlers:        h,
		repo:            repo,
		cancelCountdown: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelCountdown != nil {
		a.cancelCountdown()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run starts the HTTP server. The base URL (used for the entry QR code) is
// derived from the detected LAN IP so guests on the same network can scan in.
func (a *App) Run(addr string) error {
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.handlers.BaseURL = baseURL

	a.log.Info("Server starting", "url", baseURL)
	return http.ListenAndServe(addr, a.Router())
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
