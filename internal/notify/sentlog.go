package notify

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// SentLog remembers which email references have already been sent.
type SentLog interface {
	HasSent(ctx context.Context, reference string) (bool, error)
	MarkSent(ctx context.Context, reference, notificationID string) error
}

// MemorySentLog is a SentLog scoped to a single process.
type MemorySentLog struct {
	mu   sync.Mutex
	sent map[string]string
}

// NewMemorySentLog returns an empty in-memory log.
func NewMemorySentLog() *MemorySentLog {
	return &MemorySentLog{sent: make(map[string]string)}
}

func (m *MemorySentLog) HasSent(_ context.Context, reference string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sent[reference]
	return ok, nil
}

func (m *MemorySentLog) MarkSent(_ context.Context, reference, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[reference] = notificationID
	return nil
}

// EmailSender sends one templated email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, templateID string, personalisation map[string]string, reference string) (string, error)
}

// ErrAlreadySent is returned by Mailer.Send for a duplicate email.
var ErrAlreadySent = errors.New("email already sent")

// Mailer sends emails at most once per reference.
type Mailer struct {
	sender EmailSender
	log    SentLog
	logger *zap.Logger
}

// NewMailer wraps sender with resend protection backed by log.
func NewMailer(sender EmailSender, log SentLog, logger *zap.Logger) *Mailer {
	if log == nil {
		log = NewMemorySentLog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{sender: sender, log: log, logger: logger}
}

// Send delivers the email unless an identical one was already sent.
func (m *Mailer) Send(ctx context.Context, to, templateID string, personalisation map[string]string) error {
	ref := Reference(to, templateID, personalisation)

	sent, err := m.log.HasSent(ctx, ref)
	if err != nil {
		return err
	}
	if sent {
		m.logger.Info("Email already sent, skipping", zap.String("user", HashString(to)), zap.String("reference", ref))
		return ErrAlreadySent
	}

	id, err := m.sender.SendEmail(ctx, to, templateID, personalisation, ref)
	if err != nil {
		return err
	}
	return m.log.MarkSent(ctx, ref, id)
}
