package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medreg/registry/internal/platform/apperr"
)

func authServiceStub(t *testing.T, allowed map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/permissions/check" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(checkResponse{Allowed: allowed[req.Permission]})
	}))
}

func TestPermissionClient_Allowed(t *testing.T) {
	srv := authServiceStub(t, map[string]bool{"assets:confirm": true})
	defer srv.Close()

	client := NewPermissionClient(srv.URL, nil, zerolog.New(os.Stderr))
	if err := client.Check(context.Background(), "u-1", "assets:confirm"); err != nil {
		t.Fatalf("expected allowed, got %v", err)
	}
}

func TestPermissionClient_Denied(t *testing.T) {
	srv := authServiceStub(t, map[string]bool{})
	defer srv.Close()

	client := NewPermissionClient(srv.URL, nil, zerolog.New(os.Stderr))
	err := client.Check(context.Background(), "u-1", "assets:delete")
	if !apperr.IsAccessDenied(err) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestPermissionClient_ServiceDown(t *testing.T) {
	client := NewPermissionClient("http://127.0.0.1:1", nil, zerolog.New(os.Stderr))
	err := client.Check(context.Background(), "u-1", "assets:confirm")
	if err == nil {
		t.Fatal("expected error when auth service is unreachable")
	}
	if apperr.IsAccessDenied(err) {
		t.Fatal("outage must not be reported as a denial")
	}
}
