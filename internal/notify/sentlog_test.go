package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	calls []string
	err   error
}

func (s *stubSender) SendEmail(_ context.Context, to, _ string, _ map[string]string, reference string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.calls = append(s.calls, to+"|"+reference)
	return "id-" + to, nil
}

func TestMailer_DoesNotResend(t *testing.T) {
	sender := &stubSender{}
	log := NewMemorySentLog()
	m := NewMailer(sender, log, nil)
	ctx := context.Background()
	p := map[string]string{"message": "hi"}

	require.NoError(t, m.Send(ctx, "a@example.com", "t1", p))
	err := m.Send(ctx, "a@example.com", "t1", p)
	assert.ErrorIs(t, err, ErrAlreadySent)
	require.NoError(t, m.Send(ctx, "b@example.com", "t1", p))

	require.Len(t, sender.calls, 2)
	assert.Equal(t, "a@example.com|"+Reference("a@example.com", "t1", p), sender.calls[0])

	sent, err := log.HasSent(ctx, Reference("b@example.com", "t1", p))
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestMailer_FailedSendIsNotRecorded(t *testing.T) {
	sender := &stubSender{err: errors.New("down")}
	log := NewMemorySentLog()
	m := NewMailer(sender, log, nil)

	err := m.Send(context.Background(), "a@example.com", "t1", nil)
	assert.EqualError(t, err, "down")

	sent, err := log.HasSent(context.Background(), Reference("a@example.com", "t1", nil))
	require.NoError(t, err)
	assert.False(t, sent)
}
