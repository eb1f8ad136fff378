package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"fleet-monitor/simulator/internal/auth"
	"fleet-monitor/simulator/internal/config"
	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/log"
	"fleet-monitor/simulator/internal/recall"
	"fleet-monitor/simulator/internal/store"
)

const (
	green = "\033[92m"
	cyan  = "\033[96m"
	red   = "\033[91m"
	reset = "\033[0m"
	bold  = "\033[1m"
)

func main() {
	list := flag.Bool("list", false, "list vehicles currently on a trip and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file, using system environment variables")
	}
	cfg := config.Load()
	lg := log.New(cfg.LogLevel, cfg.LogFile, cfg.LogStderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &recall.Runner{
		BaseURL:    cfg.BackendURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout()},
		Credentials: auth.Credentials{
			Username: cfg.ManagerUsername,
			Password: cfg.ManagerPassword,
		},
		Depot:  domain.Position{Lat: cfg.DepotLat, Lng: cfg.DepotLng},
		Status: domain.Status(cfg.RecallStatus),
		Delay:  cfg.RecallDelay(),
		Logger: lg,
		RunID:  uuid.NewString(),
	}

	if *list {
		vehicles, err := runner.List(ctx)
		if err != nil {
			fail(cfg, err)
		}
		printActive(recall.ActiveVehicles(vehicles))
		return
	}

	if cfg.RedisAddr != "" {
		rs, err := store.NewRedisStore(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Redis unavailable, report will not be mirrored: %v\n", err)
		} else {
			defer rs.Close()
			runner.Recorders = append(runner.Recorders, rs)
		}
	}
	if cfg.DBEnabled {
		ts, err := store.NewTimescaleStore(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Database unavailable, report will not be stored: %v\n", err)
		} else {
			defer ts.Close()
			runner.Recorders = append(runner.Recorders, ts)
		}
	}

	fmt.Printf("Authenticating as %s%s%s...\n", bold, cfg.ManagerUsername, reset)
	fmt.Printf("%sScanning fleet status and sending RETURN TO BASE...%s\n\n", cyan, reset)

	report, err := runner.Run(ctx)
	if err != nil && len(report.Outcomes) == 0 {
		fail(cfg, err)
	}
	printReport(report)
	if err != nil {
		fmt.Printf("\n%sRecall interrupted: %v%s\n", red, err, reset)
		os.Exit(1)
	}
}

func printReport(r domain.RecallReport) {
	for _, o := range r.Outcomes {
		if o.Succeeded {
			fmt.Printf("%s✓%s %s%s%s returned to depot.\n", green, reset, bold, o.Plate, reset)
		} else {
			fmt.Printf("%s✗ Failed to move %s: %v%s\n", red, o.Plate, o.Err, reset)
		}
	}
	fmt.Printf("\n%sRecalled %d of %d vehicles.%s\n", green, r.Succeeded, len(r.Outcomes), reset)
	if r.Failed > 0 {
		fmt.Printf("%sFailed (%d): %v%s\n", red, r.Failed, r.FailedPlates, reset)
	}
}

func printActive(vs []domain.VehicleSummary) {
	if len(vs) == 0 {
		fmt.Println("No vehicles are currently on a trip.")
		return
	}
	fmt.Printf("%d active vehicles on the road:\n\n", len(vs))
	fmt.Printf("%-15s %-15s %-10s %s\n", "PLATE", "BRAND", "TYPE", "COORDS")
	for _, v := range vs {
		fmt.Printf("%-15s %-15s %-10s %.4f, %.4f\n", v.Plate, v.Brand, v.Type, v.Lat, v.Lng)
	}
}

func fail(cfg *config.Config, err error) {
	switch {
	case errors.Is(err, auth.ErrAuth):
		fmt.Fprintf(os.Stderr, "%sLogin failed for '%s': %v%s\n", red, cfg.ManagerUsername, err, reset)
	case errors.Is(err, recall.ErrFleetList):
		fmt.Fprintf(os.Stderr, "%sFailed to fetch vehicle list: %v%s\n", red, err, reset)
	default:
		fmt.Fprintf(os.Stderr, "%sCritical error: %v%s\n", red, err, reset)
	}
	os.Exit(1)
}
