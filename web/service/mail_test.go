package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailServiceSend(t *testing.T) {
	var got mailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-key", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := NewMailService(srv.URL, "secret-key", "noreply@x.com", "Usuarios", true)
	assert.True(t, svc.IsConfigured())

	err := svc.SendVerificationCode(context.Background(), "alice@x.com", "alice", "ABC123")
	assert.NoError(t, err)

	assert.Equal(t, "noreply@x.com", got.Sender["email"])
	assert.Equal(t, "alice@x.com", got.To[0]["email"])
	assert.Equal(t, "Código de verificación", got.Subject)
	assert.Contains(t, got.HtmlContent, "ABC123")
	assert.Contains(t, got.HtmlContent, "alice")
}

func TestMailServiceSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewMailService(srv.URL, "bad-key", "noreply@x.com", "Usuarios", true)
	err := svc.SendVerificationCode(context.Background(), "alice@x.com", "alice", "ABC123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestMailServiceUnconfigured(t *testing.T) {
	// Missing credential leaves the sender disabled even when enabled is set.
	svc := NewMailService("https://api.brevo.com/v3/smtp/email", "", "noreply@x.com", "Usuarios", true)
	assert.False(t, svc.IsConfigured())

	err := svc.SendVerificationCode(context.Background(), "alice@x.com", "alice", "ABC123")
	assert.Error(t, err)
}
