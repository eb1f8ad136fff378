package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fleet-monitor/simulator/internal/domain"
	transporthttp "fleet-monitor/simulator/internal/transport/http"
)

const maxErrorBody = 512

// Client speaks to the fleet-tracking backend. Authentication is supplied by
// the http.Client's transport; see transport/http.BearerTransport.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: transporthttp.DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	const op = "login"
	var out LoginResponse
	if err := c.do(ctx, op, http.MethodPost, "/api/auth/login", nil, LoginRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*DriverIdentity, error) {
	var out DriverIdentity
	if err := c.do(ctx, "get identity", http.MethodGet, "/api/drivers/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListVehicles(ctx context.Context) ([]domain.VehicleSummary, error) {
	const op = "list vehicles"
	var out []domain.VehicleSummary
	if err := c.do(ctx, op, http.MethodGet, "/api/vehicles", nil, nil, &out); err != nil {
		return nil, err
	}
	if err := validateVehicles(out); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return out, nil
}

func (c *Client) UpdateLocation(ctx context.Context, vehicleID int64, pos domain.Position) error {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(pos.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(pos.Lng, 'f', -1, 64))
	path := fmt.Sprintf("/api/vehicles/%d/location", vehicleID)
	return c.do(ctx, "update location", http.MethodPut, path, q, nil, nil)
}

func (c *Client) UpdateVehicle(ctx context.Context, vehicleID int64, upd VehicleUpdate) error {
	path := fmt.Sprintf("/api/vehicles/%d", vehicleID)
	return c.do(ctx, "update vehicle", http.MethodPut, path, nil, upd, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}
