package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "podium/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "copy into entries failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("validation error includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "year_from must not exceed year_to"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "validation_error" {
			t.Fatalf("expected error code validation_error, got %q", body["error"])
		}
		if body["error_description"] != "year_from must not exceed year_to" {
			t.Fatalf("unexpected error_description %q", body["error_description"])
		}
	})

	t.Run("uncoded error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeNotFound, "no dataset loaded"))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}

func TestBoundedInt(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "empty uses default", raw: "", want: 15},
		{name: "in range", raw: " 20 ", want: 20},
		{name: "lower bound inclusive", raw: "5", want: 5},
		{name: "below range", raw: "4", wantErr: true},
		{name: "above range", raw: "51", wantErr: true},
		{name: "not a number", raw: "ten", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BoundedInt(tt.raw, "top", 15, 5, 50)
			if tt.wantErr {
				if !dErrors.HasCode(err, dErrors.CodeValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeNotFound:     http.StatusNotFound,
		dErrors.CodeRateLimited:  http.StatusTooManyRequests,
		dErrors.CodeUnavailable:  http.StatusServiceUnavailable,
		dErrors.Code("whatever"): http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%q) = %d, want %d", code, got, want)
		}
	}
}
