package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moltblox/tournament-engine/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"validation", services.ErrTournamentInvalidFee, http.StatusBadRequest},
		{"conflict", services.ErrAlreadyRegistered, http.StatusConflict},
		{"capacity", services.ErrTournamentFull, http.StatusConflict},
		{"state", services.ErrRegistrationNotOpen, http.StatusConflict},
		{"wrapped kind", fmt.Errorf("context: %w", services.ErrNotFound), http.StatusNotFound},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			mapServiceErrorToHTTP(rec, req, tc.err)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error response is not JSON: %v", err)
			}
			if _, ok := body["error"]; !ok {
				t.Fatalf("error response missing error field: %v", body)
			}
		})
	}
}

func TestReadJSONRejectsMalformedBodies(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"syntax error", `{"name":`},
		{"unknown field", `{"bogus": true}`},
		{"trailing value", `{"name":"a"} {"name":"b"}`},
		{"wrong type", `{"name": 12}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			var dst struct {
				Name string `json:"name"`
			}
			if err := readJSON(rec, req, &dst); err == nil {
				t.Fatalf("expected error for body %q", tc.body)
			}
		})
	}
}

func TestReadJSONDecodesValidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Spring Clash"}`))
	rec := httptest.NewRecorder()

	var dst struct {
		Name string `json:"name"`
	}
	if err := readJSON(rec, req, &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.Name != "Spring Clash" {
		t.Fatalf("expected decoded name, got %q", dst.Name)
	}
}
