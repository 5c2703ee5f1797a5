package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorder_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := record(rec)

	sr.WriteHeader(http.StatusNotFound)

	if sr.Code() != http.StatusNotFound {
		t.Errorf("Code() = %d, want 404", sr.Code())
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("recorded status = %d, want 404", rec.Code)
	}
}

func TestStatusRecorder_FirstWriteHeaderWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := record(rec)

	sr.WriteHeader(http.StatusCreated)
	sr.WriteHeader(http.StatusInternalServerError)

	if sr.Code() != http.StatusCreated {
		t.Errorf("Code() = %d, want 201", sr.Code())
	}
}

func TestStatusRecorder_DefaultsTo200(t *testing.T) {
	sr := record(httptest.NewRecorder())

	if sr.Code() != http.StatusOK {
		t.Errorf("Code() = %d, want 200 for implicit header", sr.Code())
	}
}

func TestLogging_PassesThrough(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
