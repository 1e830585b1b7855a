package telegram

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent   []tgbotapi.MessageConfig
	nextID int
	err    error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func TestSink_PostAndReply(t *testing.T) {
	fake := &fakeSender{nextID: 41}
	sink := (&Bot{api: fake}).Sink(-100123)
	ctx := context.Background()

	id, err := sink.Post(ctx, "Line one.\nLine two.")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	replyID, err := sink.Reply(ctx, id, "\n\ngenius: https://genius.com/x")
	require.NoError(t, err)
	assert.Equal(t, "43", replyID)

	require.Len(t, fake.sent, 2)
	assert.Equal(t, int64(-100123), fake.sent[0].ChatID)
	assert.Equal(t, "Line one.\nLine two.", fake.sent[0].Text)
	assert.Equal(t, 0, fake.sent[0].ReplyToMessageID)
	assert.Equal(t, 42, fake.sent[1].ReplyToMessageID)
	assert.True(t, fake.sent[1].DisableWebPagePreview)
}

func TestSink_Errors(t *testing.T) {
	sink := (&Bot{api: &fakeSender{err: errors.New("Bad Request: chat not found")}}).Sink(1)

	_, err := sink.Post(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")

	_, err = sink.Reply(context.Background(), "not-a-number", "text")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Bot{api: &fakeSender{}}).Sink(1).Post(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewBot_RequiresToken(t *testing.T) {
	_, err := NewBot("")
	assert.Error(t, err)
}
