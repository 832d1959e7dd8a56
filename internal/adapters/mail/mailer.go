// Package mail renders account emails and delivers them over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/pkg/logger"
)

// ErrUnknownKind is returned when no template exists for a job kind.
var ErrUnknownKind = errors.New("unknown mail kind")

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them. It also
// keeps the last messages per recipient so local tooling can read codes back.
type LogMailer struct {
	log  logger.Logger
	mu   sync.Mutex
	last map[string]Message
}

// NewLogMailer returns a LogMailer.
func NewLogMailer(l logger.Logger) *LogMailer {
	if l == nil {
		l = logger.Get().Named("mail")
	}
	return &LogMailer{log: l, last: make(map[string]Message)}
}

// Send logs msg.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	m.last[msg.To] = msg
	m.mu.Unlock()
	m.log.Info(ctx, "mail not sent, smtp disabled",
		logger.String("to", msg.To),
		logger.String("subject", msg.Subject))
	return nil
}

// Last returns the most recent message logged for to.
func (m *LogMailer) Last(to string) (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.last[to]
	return msg, ok
}

// Dispatcher turns queued jobs into messages and hands them to a Mailer.
type Dispatcher struct {
	mailer    Mailer
	templates *Templates
}

// NewDispatcher returns a Dispatcher using the built-in templates.
func NewDispatcher(m Mailer) *Dispatcher {
	return &Dispatcher{mailer: m, templates: DefaultTemplates()}
}

// Send renders job and delivers it.
func (d *Dispatcher) Send(ctx context.Context, job model.MailJob) error {
	msg, err := d.templates.Render(job)
	if err != nil {
		return err
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver %s: %w", job.Kind, err)
	}
	return nil
}
