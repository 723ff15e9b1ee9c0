package reservas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"roomy-backend/config"
	"roomy-backend/internal/model"
)

const (
	basePath    = "/api/reservas"
	tokenTTL    = 5 * time.Minute
	maxBodySize = 1 << 20
)

// Client talks to the external reservation service on behalf of a signed-in
// user. Every call carries a short-lived HS256 token naming that user.
type Client struct {
	baseURL string
	headers map[string]string
	secret  []byte
	client  *http.Client
	now     func() time.Time
}

// NewClient creates a client from the reservas section of the configuration.
func NewClient(cfg config.ReservasConfig) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Reservation client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		secret:  []byte(cfg.SharedSecret),
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		now: time.Now,
	}
}

// Availability fetches the free start times of room on date (DD/MM/YYYY).
func (c *Client) Availability(ctx context.Context, caller *model.User, room model.Room, date string) (*AvailabilityResponse, error) {
	q := url.Values{"sala": {string(room)}, "fecha": {date}}
	var out AvailabilityResponse
	if err := c.do(ctx, caller, http.MethodGet, basePath+"/disponibilidad?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches every reservation of room on date (DD/MM/YYYY).
func (c *Client) List(ctx context.Context, caller *model.User, room model.Room, date string) ([]model.Reservation, error) {
	q := url.Values{"sala": {string(room)}, "fecha": {date}}
	var out []model.Reservation
	if err := c.do(ctx, caller, http.MethodGet, basePath+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Mine fetches the caller's own reservations.
func (c *Client) Mine(ctx context.Context, caller *model.User) ([]model.Reservation, error) {
	var out []model.Reservation
	if err := c.do(ctx, caller, http.MethodGet, basePath+"/mis-reservas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create books req for the caller. req.Date must already be DD/MM/YYYY.
func (c *Client) Create(ctx context.Context, caller *model.User, req model.ReservationRequest) (*model.Reservation, error) {
	var out model.Reservation
	if err := c.do(ctx, caller, http.MethodPost, basePath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete cancels the reservation with the given id.
func (c *Client) Delete(ctx context.Context, caller *model.User, id string) error {
	return c.do(ctx, caller, http.MethodDelete, basePath+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) bearer(caller *model.User) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"sub":   caller.ID,
		"email": caller.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *Client) do(ctx context.Context, caller *model.User, method, path string, in, out any) error {
	if caller == nil {
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	var body io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	token, err := c.bearer(caller)
	if err != nil {
		return fmt.Errorf("failed to sign caller token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
