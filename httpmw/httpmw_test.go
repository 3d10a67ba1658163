package httpmw

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func stackHandler(h http.Handler) http.Handler {
	stack := DefaultStack(1024)
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	return h
}

func TestSecurityHeadersAndTraceID(t *testing.T) {
	h := stackHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if id := rec.Header().Get("X-Trace-ID"); len(id) != 8 {
		t.Errorf("X-Trace-ID = %q", id)
	}
}

func TestHeadToGet(t *testing.T) {
	var sawMethod string
	h := stackHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawMethod = r.Method
		w.WriteHeader(200)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("HEAD", "/", nil))
	if sawMethod != "GET" {
		t.Errorf("method = %q, want GET", sawMethod)
	}
}

func TestMaxBody(t *testing.T) {
	// WHAT: bodies over the cap fail inside the handler's read.
	var readErr error
	h := stackHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(200)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 4096))))
	if readErr == nil {
		t.Fatal("oversized body read succeeded")
	}
	var mbe *http.MaxBytesError
	if !errors.As(readErr, &mbe) {
		t.Errorf("err = %T %v", readErr, readErr)
	}
}
