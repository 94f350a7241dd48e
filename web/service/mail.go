package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/usuarios-app/usuarios/logger"
	"github.com/usuarios-app/usuarios/util/common"
)

// MailService sends transactional email through a Brevo-compatible HTTP API.
// The credential and sender identity are injected once at construction; the
// service never reaches into a global secrets accessor at send time.
type MailService struct {
	apiURL     string
	apiKey     string
	sender     string
	senderName string
	enabled    bool
	client     *http.Client
}

// NewMailService builds the sender. An empty apiKey or sender leaves the
// service unconfigured: SendVerificationCode then fails with a distinct
// error instead of silently dropping mail.
func NewMailService(apiURL, apiKey, sender, senderName string, enabled bool) *MailService {
	return &MailService{
		apiURL:     apiURL,
		apiKey:     apiKey,
		sender:     sender,
		senderName: senderName,
		enabled:    enabled && apiKey != "" && sender != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IsConfigured reports whether the service can actually dispatch mail.
func (s *MailService) IsConfigured() bool {
	return s.enabled
}

type mailRequest struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

// SendVerificationCode emails the confirmation code to the freshly
// registered address. The call blocks inside the registration request; the
// caller decides that a failure is non-fatal to account creation.
func (s *MailService) SendVerificationCode(ctx context.Context, toEmail, username, code string) error {
	subject := "Código de verificación"
	body := fmt.Sprintf(
		"<p>Hola %s,</p><p>Tu código de verificación es: <strong>%s</strong></p>",
		username, code,
	)
	return s.send(ctx, toEmail, subject, body)
}

func (s *MailService) send(ctx context.Context, toEmail, subject, html string) error {
	if !s.enabled {
		return common.NewErrorf("mail service not configured, email to %s skipped", toEmail)
	}

	payload := mailRequest{
		Sender:      map[string]string{"name": s.senderName, "email": s.sender},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     subject,
		HtmlContent: html,
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return common.NewErrorf("mail send failed, status %d", resp.StatusCode)
	}
	logger.Infof("email sent to %s, subject: %s", toEmail, subject)
	return nil
}
