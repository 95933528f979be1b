package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractUUIDFromPath(t *testing.T) {
	id := "123e4567-e89b-12d3-a456-426614174000"
	parsed, err := extractUUIDFromPath("/api/calculations/"+id, "/api/calculations/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.String() != id {
		t.Fatalf("unexpected id: %s", parsed)
	}

	if _, err := extractUUIDFromPath("/wrong/path", "/api/calculations/"); err == nil {
		t.Fatalf("expected error for invalid path")
	}
}

func TestExtractIntIDFromPath(t *testing.T) {
	id, err := extractIntIDFromPath("/api/categories/42", "/api/categories/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != 42 {
		t.Fatalf("unexpected id: %d", id)
	}

	if _, err := extractIntIDFromPath("/api/categories/abc", "/api/categories/"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
	if _, err := extractIntIDFromPath("/api/categories/", "/api/categories/"); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if _, err := extractIntIDFromPath("/wrong/path", "/api/categories/"); err == nil {
		t.Fatalf("expected error for invalid path")
	}
}

func TestParseLimitOffset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/calculations?limit=25&offset=50", nil)
	limit, offset := parseLimitOffset(req)
	if limit != 25 || offset != 50 {
		t.Fatalf("unexpected limit/offset: %d/%d", limit, offset)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/calculations?limit=abc&offset=-1", nil)
	limit, offset = parseLimitOffset(req)
	if limit != 0 || offset != 0 {
		t.Fatalf("expected zero values for invalid params, got %d/%d", limit, offset)
	}
}

func TestWriteJSONResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSONResponse(rr, http.StatusOK, map[string]string{"ok": "true"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content-type: %s", ct)
	}
	if body := rr.Body.String(); body == "" {
		t.Fatalf("empty body")
	}
}

func TestWriteErrorResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	writeErrorResponse(rr, http.StatusBadRequest, "invalid input")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if body := rr.Body.String(); body == "" {
		t.Fatalf("empty body")
	}
}
