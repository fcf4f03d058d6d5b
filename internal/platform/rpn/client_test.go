package rpn

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

func TestGetAttachment_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/attachments/850315450234" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(Attachment{IIN: "850315450234", AttachedClinicID: 42, Active: true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.New(os.Stderr))
	att, err := client.GetAttachment(context.Background(), "850315450234")
	if err != nil {
		t.Fatal(err)
	}
	if att.AttachedClinicID != 42 || !att.Active {
		t.Errorf("attachment = %+v", att)
	}
}

func TestGetAttachment_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.New(os.Stderr))
	_, err := client.GetAttachment(context.Background(), "000000000000")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetAttachment_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.New(os.Stderr))
	if _, err := client.GetAttachment(context.Background(), "850315450234"); err == nil {
		t.Fatal("expected error on 502")
	}
}
