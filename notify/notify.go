// Package notify is the outbound notification dispatcher. Every send
// is best-effort: callers fire a goroutine and failures are logged,
// never surfaced as request failures.
package notify

import (
	"context"
	"log"
	"time"
)

// OrderNotice carries the denormalized details a confirmation or
// ready message needs.
type OrderNotice struct {
	OrderID      uint
	CustomerName string
	Email        string
	Phone        string
	CourseName   string
	TeeOffTime   string
	Total        float64
	Items        []OrderLine
}

type OrderLine struct {
	Name     string
	Quantity int
	Price    float64
}

// Dispatcher is the transactional notification interface. Every method
// reports failure as an error but is never awaited for correctness.
type Dispatcher interface {
	SendApprovalNotice(ctx context.Context, email, name string) error
	SendRejectionNotice(ctx context.Context, email, name, reason string) error
	SendRegistrationAlert(ctx context.Context, adminEmail, userName, userEmail string) error
	SendWelcome(ctx context.Context, email, name string) error
	SendPasswordResetCode(ctx context.Context, email, name, code string) error
	SendPasswordChanged(ctx context.Context, email, name string) error
	SendOrderConfirmation(ctx context.Context, n OrderNotice) error
	SendOrderReady(ctx context.Context, n OrderNotice) error
}

// Service wraps a Dispatcher with fire-and-forget semantics.
type Service struct {
	dispatcher Dispatcher
	timeout    time.Duration
}

func NewService(d Dispatcher) *Service {
	return &Service{dispatcher: d, timeout: 10 * time.Second}
}

// Go runs fn on its own goroutine with a bounded context and logs any
// failure. The caller returns to the client without waiting.
func (s *Service) Go(what string, fn func(ctx context.Context, d Dispatcher) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := fn(ctx, s.dispatcher); err != nil {
			log.Printf("notification %s failed: %v", what, err)
		}
	}()
}

// Fanout sends each notification through every channel and returns the
// last error, so one broken channel does not silence the others.
type Fanout []Dispatcher

func (f Fanout) SendApprovalNotice(ctx context.Context, email, name string) error {
	var last error
	for _, d := range f {
		if err := d.SendApprovalNotice(ctx, email, name); err != nil {
			last = err
		}
	}
	return last
}

func (f Fanout) SendRejectionNotice(ctx context.Context, email, name, reason string) error {
	var last error
	for _, d := range f {
		if err := d.SendRejectionNotice(ctx, email, name, reason); err != nil {
			last = err
		}
	}
	return last
}

func (f Fanout) SendRegistrationAlert(ctx context.Context, adminEmail, userName, userEmail string) error {
	var last error
	for _, d := range f {
		if err := d.SendRegistrationAlert(ctx, adminEmail, userName, userEmail); err != nil {
			last = err
		}
	}
	return last
}

func (f Fanout) SendWelcome(ctx context.Context, email, name string) error {
	var last error
	for _, d := range f {
		if err := d.SendWelcome(ctx, email, name); err != nil {
			last = err
		}
	}
	return last
}

func (f Fanout) SendPasswordResetCode(ctx context.Context, email, name, code string) error {
	var last error
	for _, d := range f {
		if err := d.SendPasswordResetCode(ctx, email, name, code); err != nil {
			last = err
		}
	}
	return last
}

func (f Fanout) SendPasswordChanged(ctx context.Context, email, name string) error {
	var last error
	for _, d := range f {
		if err := d.SendPasswordChanged(ctx, email, name); err != nil {
			last = err
		}
	}
	return last
}

func (f Fanout) SendOrderConfirmation(ctx context.Context, n OrderNotice) error {
	var last error
	for _, d := range f {
		if err := d.SendOrderConfirmation(ctx, n); err != nil {
			last = err
		}
	}
	return last
}

func (f Fanout) SendOrderReady(ctx context.Context, n OrderNotice) error {
	var last error
	for _, d := range f {
		if err := d.SendOrderReady(ctx, n); err != nil {
			last = err
		}
	}
	return last
}

// LogDispatcher is the no-credentials fallback: it records what would
// have been sent and always succeeds.
type LogDispatcher struct{}

func (LogDispatcher) SendApprovalNotice(_ context.Context, email, name string) error {
	log.Printf("notify: approval notice for %s <%s>", name, email)
	return nil
}

func (LogDispatcher) SendRejectionNotice(_ context.Context, email, name, reason string) error {
	log.Printf("notify: rejection notice for %s <%s>: %s", name, email, reason)
	return nil
}

func (LogDispatcher) SendRegistrationAlert(_ context.Context, adminEmail, userName, userEmail string) error {
	log.Printf("notify: registration alert to %s for %s <%s>", adminEmail, userName, userEmail)
	return nil
}

func (LogDispatcher) SendWelcome(_ context.Context, email, name string) error {
	log.Printf("notify: welcome message for %s <%s>", name, email)
	return nil
}

func (LogDispatcher) SendPasswordResetCode(_ context.Context, email, _ string, code string) error {
	log.Printf("notify: password reset code for <%s>: %s", email, code)
	return nil
}

func (LogDispatcher) SendPasswordChanged(_ context.Context, email, name string) error {
	log.Printf("notify: password changed notice for %s <%s>", name, email)
	return nil
}

func (LogDispatcher) SendOrderConfirmation(_ context.Context, n OrderNotice) error {
	log.Printf("notify: order #%d confirmation for %s", n.OrderID, n.CustomerName)
	return nil
}

func (LogDispatcher) SendOrderReady(_ context.Context, n OrderNotice) error {
	log.Printf("notify: order #%d ready for %s", n.OrderID, n.CustomerName)
	return nil
}
