package simulation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"fleet-monitor/simulator/internal/auth"
	"fleet-monitor/simulator/internal/environment"
)

type fakeBackend struct {
	loginStatus int
	meBody      string
	meStatus    int

	mu        sync.Mutex
	locations int
	updates   []string
	badAuth   int
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.URL.Path == "/api/auth/login" {
		if b.loginStatus != 0 {
			w.WriteHeader(b.loginStatus)
			return
		}
		io.WriteString(w, `{"token":"driver-token"}`)
		return
	}
	if r.Header.Get("Authorization") != "Bearer driver-token" {
		b.badAuth++
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/api/drivers/me":
		if b.meStatus != 0 {
			w.WriteHeader(b.meStatus)
			return
		}
		io.WriteString(w, b.meBody)
	case strings.HasSuffix(r.URL.Path, "/location"):
		b.locations++
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		b.updates = append(b.updates, string(body))
	}
}

func newRunner(t *testing.T, b *fakeBackend) *Runner {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return &Runner{
		BaseURL:     srv.URL,
		HTTPClient:  srv.Client(),
		Credentials: auth.Credentials{Username: "Dragos", Password: "utcn"},
		Route:       clujBudapest,
		Source:      environment.FixedSource(0.5),
		Pacer:       NoopPacer{},
		RunID:       "run-test",
	}
}

const meWithVehicle = `{"id":1,"name":"Dragos","vehicleId":7,"vehiclePlate":"CJ-07-TRK","vehicleBrand":"Volvo"}`

func TestRunnerRun(t *testing.T) {
	b := &fakeBackend{meBody: meWithVehicle}
	c := &collector{}
	sum, err := newRunner(t, b).Run(context.Background(), c)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Ticks != 50 || b.locations != 50 || len(b.updates) != 50 {
		t.Errorf("ticks=%d locations=%d updates=%d", sum.Ticks, b.locations, len(b.updates))
	}
	if b.updates[0] != `{"status":"ON_TRIP"}` {
		t.Errorf("status body = %s", b.updates[0])
	}
	if b.badAuth != 0 {
		t.Errorf("%d requests without bearer token", b.badAuth)
	}
	if c.snaps[0].Plate != "CJ-07-TRK" || c.snaps[0].Driver != "Dragos" {
		t.Errorf("snapshot identity = %+v", c.snaps[0])
	}
}

func TestRunnerLoginFailureIsFatal(t *testing.T) {
	b := &fakeBackend{loginStatus: http.StatusUnauthorized, meBody: meWithVehicle}
	sum, err := newRunner(t, b).Run(context.Background(), nil)
	if !errors.Is(err, auth.ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
	if sum.Ticks != 0 || b.locations != 0 || len(b.updates) != 0 {
		t.Errorf("telemetry sent after failed login: %+v", sum)
	}
}

func TestRunnerIdentityFailureIsFatal(t *testing.T) {
	tests := map[string]*fakeBackend{
		"server error": {meStatus: http.StatusInternalServerError},
		"malformed":    {meBody: `{"vehicleId":`},
		"no vehicle":   {meBody: `{"id":1,"vehicleId":null}`},
	}
	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := newRunner(t, b).Run(context.Background(), nil)
			if !errors.Is(err, ErrIdentityLookup) {
				t.Fatalf("err = %v, want ErrIdentityLookup", err)
			}
			if b.locations != 0 || len(b.updates) != 0 {
				t.Error("telemetry sent after failed identity lookup")
			}
		})
	}

	_, err := newRunner(t, tests["no vehicle"]).Run(context.Background(), nil)
	if !errors.Is(err, ErrNoVehicleAssigned) {
		t.Errorf("err = %v, want ErrNoVehicleAssigned", err)
	}
}

func TestRunnerRejectsShortRoute(t *testing.T) {
	b := &fakeBackend{meBody: meWithVehicle}
	r := newRunner(t, b)
	r.Route = clujBudapest[:1]
	if _, err := r.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for single-waypoint route")
	}
}

func TestReportIncident(t *testing.T) {
	b := &fakeBackend{meBody: meWithVehicle}
	v, err := newRunner(t, b).ReportIncident(context.Background())
	if err != nil {
		t.Fatalf("ReportIncident: %v", err)
	}
	if v.ID != 7 {
		t.Errorf("vehicle = %+v", v)
	}
	want := `{"plate":"CJ-07-TRK","brand":"Volvo","type":"Truck","status":"MAINTENANCE"}`
	if len(b.updates) != 1 || b.updates[0] != want {
		t.Errorf("updates = %v", b.updates)
	}
}
