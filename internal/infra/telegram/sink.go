// Package telegram posts excerpts to a Telegram chat.
package telegram

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	zlog "github.com/rs/zerolog/log"
)

// sender is the part of tgbotapi.BotAPI used by Sink.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps a Telegram bot connection shared by every destination chat.
type Bot struct {
	api sender
}

// NewBot connects to the Bot API with token.
func NewBot(token string) (*Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}
	zlog.Debug().Msgf("authorized on telegram as %s", api.Self.UserName)
	return &Bot{api: api}, nil
}

// Sink returns a sink posting to chatID.
func (b *Bot) Sink(chatID int64) *Sink {
	return &Sink{api: b.api, chatID: chatID}
}

// Sink posts messages into one chat.
type Sink struct {
	api    sender
	chatID int64
}

// Post sends text and returns the message ID.
func (s *Sink) Post(ctx context.Context, text string) (string, error) {
	return s.send(ctx, text, 0)
}

// Reply sends text as a reply to the message parentID.
func (s *Sink) Reply(ctx context.Context, parentID, text string) (string, error) {
	id, err := strconv.Atoi(parentID)
	if err != nil {
		return "", errors.Wrapf(err, "invalid telegram message id %q", parentID)
	}
	return s.send(ctx, text, id)
}

func (s *Sink) send(ctx context.Context, text string, replyTo int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.DisableWebPagePreview = true
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo
	}

	sent, err := s.api.Send(msg)
	if err != nil {
		return "", errors.Wrapf(err, "failed to send telegram message to chat %d", s.chatID)
	}
	return strconv.Itoa(sent.MessageID), nil
}
