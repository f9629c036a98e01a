// Package email sends transactional mail through Resend.
//
// The registry only mails one thing: an alert to the configured coordinator
// address whenever a new blood request is filed. The sender is optional;
// when RESEND_API_KEY, RESEND_FROM or ALERT_EMAIL is missing main wires a
// nil AlertSender and the blood request service skips the alert.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/resend/resend-go/v3"
)

// BloodRequestAlert is the data rendered into the alert mail.
type BloodRequestAlert struct {
	Name        string
	BloodGroup  string
	City        string
	Contact     string
	RequestedAt time.Time
}

// AlertSender delivers blood request alerts.
type AlertSender interface {
	SendBloodRequestAlert(ctx context.Context, alert BloodRequestAlert) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
	toEmail   string
}

// NewResendSender returns an AlertSender that mails toEmail from fromEmail.
func NewResendSender(apiKey, fromEmail, toEmail string) AlertSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

func (s *resendSender) SendBloodRequestAlert(ctx context.Context, alert BloodRequestAlert) error {
	body, err := RenderBloodRequestAlert(alert)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Blood Donor Registry <%s>", s.fromEmail),
		To:      []string{s.toEmail},
		Subject: AlertSubject(alert),
		Html:    body,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send blood request alert: %w", err)
	}
	return nil
}

// AlertSubject is the mail subject line for alert.
func AlertSubject(alert BloodRequestAlert) string {
	return fmt.Sprintf("Blood needed: %s in %s", alert.BloodGroup, alert.City)
}

var alertTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:24px;font-family:Arial,Helvetica,sans-serif;background-color:#fff5f5;">
  <h2 style="color:#b91c1c;margin:0 0 16px 0;">New blood request</h2>
  <table cellpadding="6" cellspacing="0" style="font-size:15px;color:#1f2937;">
    <tr><td><b>Requested by</b></td><td>{{.Name}}</td></tr>
    <tr><td><b>Blood group</b></td><td>{{.BloodGroup}}</td></tr>
    <tr><td><b>City</b></td><td>{{.City}}</td></tr>
    <tr><td><b>Contact</b></td><td>{{.Contact}}</td></tr>
    <tr><td><b>Filed at</b></td><td>{{.RequestedAt.UTC.Format "2006-01-02 15:04 MST"}}</td></tr>
  </table>
</body>
</html>`))

// RenderBloodRequestAlert renders the HTML body; field values are escaped.
func RenderBloodRequestAlert(alert BloodRequestAlert) (string, error) {
	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, alert); err != nil {
		return "", fmt.Errorf("failed to render blood request alert: %w", err)
	}
	return buf.String(), nil
}
