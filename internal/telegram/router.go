package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"nexus_bot/internal/conversation"
	"nexus_bot/internal/domain"
	"nexus_bot/internal/logging"
	"nexus_bot/internal/logsink"
	"nexus_bot/internal/relay"
	"nexus_bot/internal/store"
)

// Sender is the subset of Telegram client behavior the router needs for its
// own replies.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// handlerFunc is a resolved command handler. arg carries the text following
// the command, trimmed.
type handlerFunc func(ctx context.Context, msg *models.Message, arg string) error

// Deps wires the router to its collaborators.
type Deps struct {
	API           Sender
	Profiles      *store.Profiles
	Groups        *store.Groups
	Memberships   *store.Memberships
	LogSettings   *store.LogSettings
	Relay         *relay.Correlator
	Sink          *logsink.Sink
	Conversations *conversation.Store
	LogChatID     int64
	Logger        *logrus.Entry
}

// Router dispatches every inbound message to exactly one handler: the admin
// reply path for the log chat, a command, a pending input stage, or the
// moderation relay as the fallback.
type Router struct {
	api           Sender
	profiles      *store.Profiles
	groups        *store.Groups
	memberships   *store.Memberships
	logSettings   *store.LogSettings
	relay         *relay.Correlator
	sink          *logsink.Sink
	conversations *conversation.Store
	logChatID     int64
	logger        *logrus.Entry

	// now is overridable for tests.
	now func() time.Time
}

// NewRouter constructs a Router from its dependencies.
func NewRouter(deps Deps) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Logger()
	}

	conversations := deps.Conversations
	if conversations == nil {
		conversations = conversation.NewStore()
	}

	return &Router{
		api:           deps.API,
		profiles:      deps.Profiles,
		groups:        deps.Groups,
		memberships:   deps.Memberships,
		logSettings:   deps.LogSettings,
		relay:         deps.Relay,
		sink:          deps.Sink,
		conversations: conversations,
		logChatID:     deps.LogChatID,
		logger:        logger,
		now:           time.Now,
	}
}

// Handle routes one update. It satisfies the logsink handler contract so the
// sink guard can classify whatever it reports.
func (r *Router) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}
	msg := update.Message

	// Commands are matched everywhere, including the log chat: admins run
	// /setloglevel and /getloglevel from there.
	if msg.From != nil {
		cmd, arg := parseCommand(msg.Text)
		if handler := r.commandHandler(cmd); handler != nil {
			return handler(ctx, msg, arg)
		}
	}

	// Traffic inside the log chat never re-enters the relay. Replies there
	// are routed back to their origin; whatever matches nothing else is
	// admin chatter and is dropped.
	if msg.Chat.ID == r.logChatID {
		if msg.ReplyToMessage != nil {
			if err := r.relay.RouteAdminReply(ctx, msg); err != nil {
				r.sink.Emit(ctx, domain.LevelError, fmt.Sprintf("admin reply routing failed: %v", err))
			}
			return nil
		}
		if msg.From != nil {
			key := conversation.Key{ChatID: msg.Chat.ID, UserID: msg.From.ID}
			if state := r.conversations.Get(key); state.Stage != conversation.StageIdle {
				return r.handleStageInput(ctx, msg, key, state)
			}
		}
		return nil
	}

	if msg.From == nil {
		return r.forward(ctx, msg)
	}

	key := conversation.Key{ChatID: msg.Chat.ID, UserID: msg.From.ID}
	if state := r.conversations.Get(key); state.Stage != conversation.StageIdle {
		return r.handleStageInput(ctx, msg, key, state)
	}

	return r.forward(ctx, msg)
}

func (r *Router) commandHandler(cmd string) handlerFunc {
	switch cmd {
	case "start":
		return r.cmdStart
	case "cancel":
		return r.cmdCancel
	case "birthday":
		return r.cmdBirthday
	case "contact":
		return r.cmdContact
	case "group":
		return r.requireMembership(r.cmdGroup)
	case "setdescription":
		return r.requireMembership(r.requireRole(domain.RoleModerator, r.cmdSetDescription))
	case "setloglevel":
		return r.requireRole(domain.RoleAdmin, r.cmdSetLogLevel)
	case "getloglevel":
		return r.cmdGetLogLevel
	case "setbirthday":
		return r.promptFor(conversation.StageAwaitingBirthday, msgPromptBirthday)
	case "setemail":
		return r.promptFor(conversation.StageAwaitingEmail, msgPromptEmail)
	case "setphone":
		return r.promptFor(conversation.StageAwaitingPhone, msgPromptPhone)
	case "setfullname":
		return r.promptFor(conversation.StageAwaitingFullName, msgPromptFullName)
	}
	return nil
}

// forward hands the message to the moderation relay. Relay failures are
// surfaced through the sink rather than the guard: the sender should not get
// an apology for a message that was delivered to them just fine.
func (r *Router) forward(ctx context.Context, msg *models.Message) error {
	if err := r.relay.Forward(ctx, msg); err != nil {
		r.sink.Emit(ctx, domain.LevelError, fmt.Sprintf("relay forward failed: %v", err))
	}
	return nil
}

// requireRole resolves the sender's profile, creating it on first contact,
// and runs the wrapped handler only when the profile's role reaches the
// required ordinal.
func (r *Router) requireRole(required domain.Role, next handlerFunc) handlerFunc {
	return func(ctx context.Context, msg *models.Message, arg string) error {
		profile, _, err := r.profiles.GetOrCreate(ctx, msg.From.ID, attrsFromUser(msg.From))
		if err != nil {
			return err
		}

		if !profile.Role.AtLeast(required) {
			r.logger.WithFields(logging.Fields{
				"event":    "role_denied",
				"user_id":  msg.From.ID,
				"role":     profile.Role.String(),
				"required": required.String(),
			}).Info("command denied by role gate")
			return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Insufficient rights. Required role: %s.", required))
		}

		return next(ctx, msg, arg)
	}
}

// requireMembership ensures the sender's profile, the group record for the
// chat, and the membership linking them all exist before the wrapped handler
// runs. Creating the group makes the sender its owner. The first interaction
// that registers or joins the group stops at the announcement; the handler
// runs from the next message on.
func (r *Router) requireMembership(next handlerFunc) handlerFunc {
	return func(ctx context.Context, msg *models.Message, arg string) error {
		if msg.Chat.Type == models.ChatTypePrivate {
			return r.reply(ctx, msg.Chat.ID, msgGroupOnly)
		}

		profile, _, err := r.profiles.GetOrCreate(ctx, msg.From.ID, attrsFromUser(msg.From))
		if err != nil {
			return err
		}

		group, createdGroup, err := r.groups.GetOrCreate(ctx, msg.Chat.ID, msg.Chat.Title, domain.KindFromChatType(msg.Chat.Type), profile.TelegramID)
		if err != nil {
			return err
		}

		member, err := r.memberships.IsMember(ctx, profile.TelegramID, group.TelegramID)
		if err != nil {
			return err
		}
		if member {
			return next(ctx, msg, arg)
		}

		if _, err := r.memberships.Add(ctx, profile.TelegramID, group.TelegramID, createdGroup); err != nil {
			return err
		}

		if createdGroup {
			return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Group %q registered. You are its creator.", group.Title))
		}
		return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("%s, you have been added to the group %q.", profile.DisplayName(), group.Title))
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) error {
	_, err := r.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return domain.Transport(fmt.Errorf("send reply to chat %d: %w", chatID, err))
	}
	return nil
}

func attrsFromUser(user *models.User) store.ProfileAttrs {
	if user == nil {
		return store.ProfileAttrs{}
	}

	return store.ProfileAttrs{
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		LanguageCode: user.LanguageCode,
		IsPremium:    user.IsPremium,
	}
}

// parseCommand extracts a command name from the message text. Slash commands
// may carry a bot mention suffix and an argument tail; a short list of bare
// words acts as command aliases when they make up the whole message.
func parseCommand(text string) (cmd, arg string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ""
	}

	fields := strings.Fields(trimmed)
	head := strings.ToLower(fields[0])
	arg = strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0]))

	if strings.HasPrefix(head, "/") {
		head = strings.TrimPrefix(head, "/")
		if at := strings.Index(head, "@"); at >= 0 {
			head = head[:at]
		}
		return head, arg
	}

	if len(fields) != 1 {
		return "", ""
	}

	switch head {
	case "hello", "hi":
		return "start", ""
	case "profile":
		return "contact", ""
	case "start", "cancel", "birthday", "contact", "group":
		return head, ""
	}

	return "", ""
}
