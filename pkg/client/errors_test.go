package client

import (
	"errors"
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorClass
	}{
		{429, ErrorClassRateLimit},
		{403, ErrorClassClient},
		{404, ErrorClassClient},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
		{200, ""},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.code); got != tt.want {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  bool
	}{
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{ErrorClassParse, true},
		{"", false},
	}

	for _, tt := range tests {
		if got := shouldRetry(tt.class); got != tt.want {
			t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestCatalogError_Error(t *testing.T) {
	e := &CatalogError{StatusCode: 500, ErrorClass: ErrorClassServer, Message: "500 Internal Server Error"}
	want := "catalog server error (status 500): 500 Internal Server Error"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	inner := errors.New("connection reset")
	wrapped := &CatalogError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: inner}
	if !errors.Is(wrapped, inner) {
		t.Error("Unwrap does not expose the inner error")
	}
}

func TestClassOf(t *testing.T) {
	if got := classOf(&CatalogError{ErrorClass: ErrorClassParse}); got != ErrorClassParse {
		t.Errorf("classOf = %q, want parse", got)
	}
	if got := classOf(errors.New("dial tcp: timeout")); got != ErrorClassNetwork {
		t.Errorf("classOf = %q, want network for plain errors", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&CatalogError{StatusCode: http.StatusNotFound, ErrorClass: ErrorClassClient}) {
		t.Error("isNotFound(404) = false")
	}
	if isNotFound(&CatalogError{StatusCode: http.StatusForbidden, ErrorClass: ErrorClassClient}) {
		t.Error("isNotFound(403) = true")
	}
	if isNotFound(errors.New("boom")) {
		t.Error("isNotFound(plain error) = true")
	}
}
