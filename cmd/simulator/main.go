package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"fleet-monitor/simulator/internal/auth"
	"fleet-monitor/simulator/internal/config"
	"fleet-monitor/simulator/internal/environment"
	"fleet-monitor/simulator/internal/log"
	"fleet-monitor/simulator/internal/route"
	"fleet-monitor/simulator/internal/simulation"
)

func main() {
	incident := flag.Bool("incident", false, "report a MAINTENANCE incident for the driver's vehicle and exit")
	routeFile := flag.String("route", "", "YAML route file (overrides ROUTE_FILE)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file, using system environment variables")
	}
	cfg := config.Load()
	if *routeFile != "" {
		cfg.RouteFile = *routeFile
	}

	lg := log.New(cfg.LogLevel, cfg.LogFile, cfg.LogStderr)
	runID := uuid.NewString()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := route.LoadFile(cfg.RouteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid route: %v\n", err)
		os.Exit(1)
	}

	pacer := simulation.NewTickerPacer(cfg.TickInterval())
	defer pacer.Stop()

	runner := &simulation.Runner{
		BaseURL:    cfg.BackendURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout()},
		Credentials: auth.Credentials{
			Username: cfg.DriverUsername,
			Password: cfg.DriverPassword,
		},
		Route:  rt,
		Source: environment.NewPCGSource(cfg.Seed),
		Pacer:  pacer,
		Logger: lg,
		RunID:  runID,
	}

	if *incident {
		v, err := runner.ReportIncident(ctx)
		if err != nil {
			fail(cfg, err)
		}
		fmt.Printf("%sREPORT SENT! Vehicle %s status updated to MAINTENANCE.%s\n", green, v.Plate, reset)
		return
	}

	s, err := startSinks(ctx, cfg, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start telemetry sinks: %v\n", err)
		os.Exit(1)
	}

	sum, err := runner.Run(ctx, simulation.Sinks{dashboard{w: os.Stdout}, s.dispatcher})
	if serr := s.stop(); serr != nil {
		lg.Error("sink shutdown failed", slog.Any("err", serr))
	}

	switch {
	case err == nil:
		fmt.Printf("\n%sRoute completed:%s %d ticks, %d telemetry pushes lost.\n", bold, reset, sum.Ticks, sum.PushFailures)
	case errors.Is(err, context.Canceled):
		fmt.Printf("\n%sSimulation stopped after %d ticks.%s\n", yellow, sum.Ticks, reset)
	default:
		fail(cfg, err)
	}
}

func fail(cfg *config.Config, err error) {
	switch {
	case errors.Is(err, auth.ErrAuth):
		fmt.Fprintf(os.Stderr, "%sConnection failed. Check password for user '%s'.%s\n  %v\n", red, cfg.DriverUsername, reset, err)
	case errors.Is(err, simulation.ErrIdentityLookup):
		fmt.Fprintf(os.Stderr, "%sCould not resolve the driver's vehicle.%s\n  %v\n", red, reset, err)
	default:
		fmt.Fprintf(os.Stderr, "%sSimulation error: %v%s\n", red, err, reset)
	}
	os.Exit(1)
}
