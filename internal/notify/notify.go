package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"care4-server/internal/config"
	"care4-server/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

const dateTimeLayout = "Jan 2, 2006, 3:04 PM"

// Message is a notification to one recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages to patients.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// AppointmentMessage builds the notice sent when an appointment is scheduled
// or cancelled. ok is false for statuses that send nothing.
func AppointmentMessage(to string, a *models.Appointment) (msg Message, ok bool) {
	when := a.Schedule.Format(dateTimeLayout)
	switch a.Status {
	case models.StatusScheduled:
		return Message{
			To:      to,
			Subject: "Your appointment is confirmed",
			Body:    fmt.Sprintf("Greetings from care4. Your appointment is confirmed for %s with Dr. %s", when, a.PrimaryPhysician),
		}, true
	case models.StatusCancelled:
		return Message{
			To:      to,
			Subject: "Your appointment is cancelled",
			Body:    fmt.Sprintf("Greetings from care4. We regret to inform that your appointment for %s is cancelled. Reason: %s", when, a.CancellationReason),
		}, true
	}
	return Message{}, false
}

// Noop drops every message.
type Noop struct{}

func (Noop) Notify(context.Context, Message) error { return nil }

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends notifications over SMTP.
type EmailNotifier struct {
	from    string
	dialer  dialer
	timeout time.Duration
	log     zerolog.Logger
}

// New returns an EmailNotifier when the mailer is enabled and Noop otherwise.
func New(cfg config.MailerConfig, log zerolog.Logger) Notifier {
	if !cfg.Enabled {
		return Noop{}
	}
	return &EmailNotifier{
		from:    cfg.DefaultFrom,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		timeout: 15 * time.Second,
		log:     log,
	}
}

// Notify sends msg, giving up when ctx ends or the timeout passes.
func (n *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("notify: recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("notify: send to %s: %w", msg.To, err)
		}
		n.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("notification sent")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(n.timeout):
		return context.DeadlineExceeded
	}
}
