package reservas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomy-backend/config"
	"roomy-backend/internal/model"
)

const testSecret = "shared-secret"

var ana = &model.User{ID: "u-ana", Email: "ana@example.com"}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(config.ReservasConfig{
		BaseURL:      server.URL + "/",
		SharedSecret: testSecret,
		Timeout:      2 * time.Second,
		Headers:      map[string]string{"X-Client": "roomy"},
	})
}

// subject validates the bearer token the way the reservation service would.
func subject(t *testing.T, r *http.Request) string {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	sub, _ := claims.GetSubject()
	return sub
}

func TestClient_Availability(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/reservas/disponibilidad", r.URL.Path)
		assert.Equal(t, "Sala1", r.URL.Query().Get("sala"))
		assert.Equal(t, "01/05/2024", r.URL.Query().Get("fecha"))
		assert.Equal(t, "roomy", r.Header.Get("X-Client"))
		assert.Equal(t, "u-ana", subject(t, r))

		json.NewEncoder(w).Encode(AvailabilityResponse{
			Room: "Sala1", Date: "01/05/2024", Available: []string{"09:00", "09:30"},
		})
	})

	resp, err := client.Availability(context.Background(), ana, "Sala1", "01/05/2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, resp.Available)
}

func TestClient_ListAndMine(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reservas":
			assert.Equal(t, "Sala2", r.URL.Query().Get("sala"))
			json.NewEncoder(w).Encode([]model.Reservation{{ID: "r1", Room: "Sala2", Date: "01/05/2024", StartTime: "10:00", EndTime: "11:00"}})
		case "/api/reservas/mis-reservas":
			json.NewEncoder(w).Encode([]model.Reservation{{ID: "r2", OwnerID: "u-ana"}})
		default:
			http.NotFound(w, r)
		}
	})

	list, err := client.List(context.Background(), ana, "Sala2", "01/05/2024")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "10:00", list[0].StartTime)

	mine, err := client.Mine(context.Background(), ana)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "r2", mine[0].ID)
}

func TestClient_Create(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req model.ReservationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "01/05/2024", req.Date)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Reservation{
			ID: "r9", OwnerID: subject(t, r), Room: req.Room, Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime,
		})
	})

	res, err := client.Create(context.Background(), ana, model.ReservationRequest{
		Room: "Sala3", Date: "01/05/2024", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "r9", res.ID)
	assert.Equal(t, "u-ana", res.OwnerID)
}

func TestClient_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{name: "Conflict", status: http.StatusConflict, body: `{"message":"La sala ya está reservada"}`, sentinel: ErrConflict, message: "La sala ya está reservada"},
		{name: "Not found", status: http.StatusNotFound, body: `{"error":"no existe"}`, sentinel: ErrNotFound, message: "no existe"},
		{name: "Unauthorized", status: http.StatusUnauthorized, body: ``, sentinel: ErrUnauthorized},
		{name: "Server error", status: http.StatusInternalServerError, body: `oops`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			err := client.Delete(context.Background(), ana, "r1")
			require.Error(t, err)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.status, se.StatusCode)
			assert.Equal(t, tc.message, se.Message)
			if tc.sentinel != nil {
				assert.ErrorIs(t, err, tc.sentinel)
			}
		})
	}
}

func TestClient_RequiresCaller(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a caller")
	})

	_, err := client.Mine(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_Delete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/reservas/abc%2F1", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.Delete(context.Background(), ana, "abc/1"))
}
