package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const resendEndpoint = "https://api.resend.com/emails"

// EmailSender delivers transactional email through the Resend HTTP API.
type EmailSender struct {
	apiKey     string
	fromEmail  string
	httpClient *http.Client
}

func NewEmailSender(apiKey, fromEmail string) *EmailSender {
	return &EmailSender{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		httpClient: &http.Client{},
	}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *EmailSender) send(ctx context.Context, to, subject, html string) error {
	if to == "" {
		return fmt.Errorf("no recipient address")
	}
	body, err := json.Marshal(resendPayload{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}

func (s *EmailSender) SendApprovalNotice(ctx context.Context, email, name string) error {
	return s.send(ctx, email, "Your account has been approved",
		fmt.Sprintf("<p>Hi %s,</p><p>Your account has been approved. You can now log in and place orders.</p>", name))
}

func (s *EmailSender) SendRejectionNotice(ctx context.Context, email, name, reason string) error {
	return s.send(ctx, email, "Your account registration",
		fmt.Sprintf("<p>Hi %s,</p><p>Your registration was not approved.</p><p>Reason: %s</p>", name, reason))
}

func (s *EmailSender) SendRegistrationAlert(ctx context.Context, adminEmail, userName, userEmail string) error {
	return s.send(ctx, adminEmail, "New user registration",
		fmt.Sprintf("<p>New user awaiting approval: %s (%s)</p>", userName, userEmail))
}

func (s *EmailSender) SendWelcome(ctx context.Context, email, name string) error {
	return s.send(ctx, email, "Welcome to the clubhouse",
		fmt.Sprintf("<p>Hi %s,</p><p>Thanks for registering. We'll let you know as soon as your account is approved.</p>", name))
}

func (s *EmailSender) SendPasswordResetCode(ctx context.Context, email, name, code string) error {
	return s.send(ctx, email, "Password reset code",
		fmt.Sprintf("<p>Hi %s,</p><p>Your password reset code is:</p><h1>%s</h1><p>If you didn't request this, ignore this email.</p>", name, code))
}

func (s *EmailSender) SendPasswordChanged(ctx context.Context, email, name string) error {
	return s.send(ctx, email, "Your password was changed",
		fmt.Sprintf("<p>Hi %s,</p><p>Your password was just changed. If this wasn't you, contact the club office.</p>", name))
}

func (s *EmailSender) SendOrderConfirmation(ctx context.Context, n OrderNotice) error {
	return s.send(ctx, n.Email, fmt.Sprintf("Order #%d confirmed", n.OrderID), orderHTML("We've received your order.", n))
}

func (s *EmailSender) SendOrderReady(ctx context.Context, n OrderNotice) error {
	return s.send(ctx, n.Email, fmt.Sprintf("Order #%d is ready", n.OrderID), orderHTML("Your order is ready for collection.", n))
}

func orderHTML(lead string, n OrderNotice) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<p>Hi %s,</p><p>%s</p><ul>", n.CustomerName, lead)
	for _, it := range n.Items {
		fmt.Fprintf(&b, "<li>%d x %s</li>", it.Quantity, it.Name)
	}
	fmt.Fprintf(&b, "</ul><p>Total: %.2f</p>", n.Total)
	if n.TeeOffTime != "" {
		fmt.Fprintf(&b, "<p>Tee-off: %s</p>", n.TeeOffTime)
	}
	return b.String()
}
