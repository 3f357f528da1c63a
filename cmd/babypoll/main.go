package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nwang/babypoll/internal/app"
	"github.com/nwang/babypoll/internal/auth"
	"github.com/nwang/babypoll/internal/logger"
)

var version = "dev"

func main() {
	// Optional .env file; flags and real env still win
	godotenv.Load()

	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "babypoll.db", "SQLite database path")
	adminPw := flag.String("adminpw", "", "Admin password (auto-generated if not set)")
	pin := flag.String("pin", "", "Event PIN guests must enter (required)")
	deadlineStr := flag.String("deadline", "", "Voting deadline, RFC 3339 (open forever if not set)")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `BabyPoll - Gender Reveal Guessing Game

Usage:
  babypoll -pin <PIN> [options]

Options:
  -port int      HTTP server port (default 8080)
  -db string     SQLite database path (default "babypoll.db")
  -adminpw str   Admin password (auto-generated if not set)
  -pin str       Event PIN guests must enter (required; env BABYPOLL_PIN)
  -deadline str  Voting deadline in RFC 3339 (open forever if not set)
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -version       Show version and exit
  -help          Show this help message

Examples:
  babypoll -pin LMN2026                                  # No deadline
  babypoll -pin LMN2026 -deadline 2026-02-16T23:59:59Z   # Close at the party
  babypoll -pin LMN2026 -port 80 -db /data/poll.db       # Production example

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("babypoll %s\n", version)
		os.Exit(0)
	}

	eventPin := *pin
	if eventPin == "" {
		eventPin = os.Getenv("BABYPOLL_PIN")
	}
	if eventPin == "" {
		fmt.Fprintln(os.Stderr, "error: event PIN required (use -pin or BABYPOLL_PIN env)")
		flag.Usage()
		os.Exit(1)
	}

	var deadline *time.Time
	if *deadlineStr == "" {
		*deadlineStr = os.Getenv("BABYPOLL_DEADLINE")
	}
	if *deadlineStr != "" {
		t, err := time.Parse(time.RFC3339, *deadlineStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid -deadline %q: %v\n", *deadlineStr, err)
			os.Exit(1)
		}
		deadline = &t
	}

	// Setup admin authentication
	password := *adminPw
	if password == "" {
		password = os.Getenv("BABYPOLL_ADMIN_PASSWORD")
	}
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))

	a, err := app.New(appLog, app.Config{
		DBPath:   *dbPath,
		PIN:      eventPin,
		Deadline: deadline,
	}, adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}
	defer a.Close()

	appLog.Info("Admin password", "password", password)

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		appLog.Info("Shutting down")
		a.Close()
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	if err := a.Run(addr); err != nil {
		log.Fatal(err)
	}
}
