package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// WhatsAppSender delivers order notifications through the Twilio
// messages API. Methods with no WhatsApp equivalent are no-ops so the
// sender can sit in a Fanout next to the email channel.
type WhatsAppSender struct {
	accountSID  string
	authToken   string
	fromNumber  string
	countryCode string // prepended to local numbers, e.g. "+27"
	httpClient  *http.Client
}

func NewWhatsAppSender(accountSID, authToken, fromNumber, countryCode string) *WhatsAppSender {
	return &WhatsAppSender{
		accountSID:  accountSID,
		authToken:   authToken,
		fromNumber:  fromNumber,
		countryCode: countryCode,
		httpClient:  &http.Client{},
	}
}

// FormatNumber normalizes a phone number to E.164, assuming the
// configured country code for numbers written with a leading zero.
func FormatNumber(phone, countryCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return ""
	}
	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	if strings.HasPrefix(cleaned, "0") {
		return countryCode + cleaned[1:]
	}
	return "+" + cleaned
}

func (s *WhatsAppSender) send(ctx context.Context, toNumber, message string) error {
	if toNumber == "" {
		// Nothing to deliver to; not an error
		return nil
	}
	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.accountSID)
	form := url.Values{}
	form.Set("From", "whatsapp:"+s.fromNumber)
	form.Set("To", "whatsapp:"+FormatNumber(toNumber, s.countryCode))
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}

func (s *WhatsAppSender) SendOrderConfirmation(ctx context.Context, n OrderNotice) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! Your order #%d is confirmed.\n", n.CustomerName, n.OrderID)
	for _, it := range n.Items {
		fmt.Fprintf(&b, "- %d x %s\n", it.Quantity, it.Name)
	}
	fmt.Fprintf(&b, "Total: %.2f", n.Total)
	if n.TeeOffTime != "" {
		fmt.Fprintf(&b, "\nTee-off: %s", n.TeeOffTime)
	}
	return s.send(ctx, n.Phone, b.String())
}

func (s *WhatsAppSender) SendOrderReady(ctx context.Context, n OrderNotice) error {
	return s.send(ctx, n.Phone,
		fmt.Sprintf("Hi %s! Your order #%d is ready for collection at the clubhouse.", n.CustomerName, n.OrderID))
}

// Account lifecycle notices go out by email only.

func (s *WhatsAppSender) SendApprovalNotice(context.Context, string, string) error { return nil }

func (s *WhatsAppSender) SendRejectionNotice(context.Context, string, string, string) error {
	return nil
}

func (s *WhatsAppSender) SendRegistrationAlert(context.Context, string, string, string) error {
	return nil
}

func (s *WhatsAppSender) SendWelcome(context.Context, string, string) error { return nil }

func (s *WhatsAppSender) SendPasswordResetCode(context.Context, string, string, string) error {
	return nil
}

func (s *WhatsAppSender) SendPasswordChanged(context.Context, string, string) error { return nil }
