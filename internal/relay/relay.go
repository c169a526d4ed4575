// Package relay forwards unclassified inbound messages to the moderation chat
// and routes admin replies back to the originating chat by parsing the
// correlation tag embedded in the forwarded copy's companion message.
package relay

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"nexus_bot/internal/domain"
	"nexus_bot/internal/logging"
)

// API is the subset of Telegram client behavior the correlator needs.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	ForwardMessage(ctx context.Context, params *bot.ForwardMessageParams) (*models.Message, error)
}

// tagPattern matches the correlation tag. Group chat ids are negative, so the
// first capture allows a sign.
var tagPattern = regexp.MustCompile(`\|\|origin_chat_id:(-?\d+)\|origin_msg_id:(\d+)\|\|`)

// Tag renders the correlation tag for an origin chat/message pair.
func Tag(chatID int64, messageID int) string {
	return fmt.Sprintf("||origin_chat_id:%d|origin_msg_id:%d||", chatID, messageID)
}

// ParseTag extracts the origin chat and message ids from text containing a
// correlation tag.
func ParseTag(text string) (chatID int64, messageID int, ok bool) {
	match := tagPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, false
	}

	chatID, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}

	messageID, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, false
	}

	return chatID, messageID, true
}

// Correlator implements the two relay paths around a fixed moderation chat.
type Correlator struct {
	api       API
	logChatID int64
	logger    *logrus.Entry
}

// NewCorrelator constructs a Correlator bound to the moderation chat.
func NewCorrelator(api API, logChatID int64, logger *logrus.Entry) *Correlator {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Correlator{
		api:       api,
		logChatID: logChatID,
		logger:    logger,
	}
}

// Forward copies the message verbatim into the moderation chat and follows it
// with a separate tag message carrying the correlation metadata. The tag is a
// second message because a forwarded copy cannot reliably be edited or
// reply-linked across client types. If the tag send fails after a successful
// forward, the forward is neither rolled back nor retried.
func (c *Correlator) Forward(ctx context.Context, msg *models.Message) error {
	if msg == nil {
		return nil
	}
	if msg.Chat.ID == c.logChatID {
		return nil
	}

	_, err := c.api.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:     c.logChatID,
		FromChatID: msg.Chat.ID,
		MessageID:  msg.ID,
	})
	if err != nil {
		return domain.Transport(fmt.Errorf("forward message %d from chat %d: %w", msg.ID, msg.Chat.ID, err))
	}

	_, err = c.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: c.logChatID,
		Text:   Tag(msg.Chat.ID, msg.ID),
	})
	if err != nil {
		return domain.Transport(fmt.Errorf("send correlation tag for chat %d: %w", msg.Chat.ID, err))
	}

	return nil
}

// RouteAdminReply delivers an admin's reply in the moderation chat back to
// the origin chat encoded in the replied-to tag message. Messages that are
// not replies, or replies to text without a parseable tag, are silently
// ignored.
func (c *Correlator) RouteAdminReply(ctx context.Context, msg *models.Message) error {
	if msg == nil || msg.ReplyToMessage == nil {
		return nil
	}

	originChatID, originMsgID, ok := ParseTag(msg.ReplyToMessage.Text)
	if !ok {
		c.logger.WithFields(logging.Fields{
			"event":   "relay_tag_missing",
			"chat_id": msg.Chat.ID,
		}).Debug("reply target carries no correlation tag")
		return nil
	}

	_, err := c.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: originChatID,
		Text:   msg.Text,
	})
	if err != nil {
		return domain.Transport(fmt.Errorf("deliver admin reply to chat %d (origin message %d): %w", originChatID, originMsgID, err))
	}

	return nil
}
