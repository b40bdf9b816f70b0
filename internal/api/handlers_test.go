package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Input validation rejects requests before the manager is touched, so a
// nil manager is safe here.

func TestBookAppointmentHandlerRejectsBadInput(t *testing.T) {
	handler := bookAppointmentHandler(nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"bad slot id", `{"slot_id":"nope","patient_id":"7c9e6679-7425-40de-944b-e07fc1f90ae7"}`},
		{"bad patient id", `{"slot_id":"7c9e6679-7425-40de-944b-e07fc1f90ae7","patient_id":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(tt.body))
			handler(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGenerateSlotsHandlerRejectsBadSpan(t *testing.T) {
	handler := generateSlotsHandler(nil, 0)

	body := `{"provider_id":"7c9e6679-7425-40de-944b-e07fc1f90ae7","window_start":"2026-03-02T09:00:00Z","window_end":"2026-03-02T10:00:00Z","span":"half an hour"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/slots/generate", strings.NewReader(body))
	handler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAppointmentsHandlerRejectsBadFilters(t *testing.T) {
	handler := listAppointmentsHandler(nil)

	for _, query := range []string{
		"?provider_id=nope",
		"?patient_id=nope",
		"?date=March+2nd",
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/appointments"+query, nil)
		handler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %s", query)
	}
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(nil, nil, "test", "0.0.0")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	h.Liveness(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
