package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"nexus_bot/internal/conversation"
	"nexus_bot/internal/domain"
	"nexus_bot/internal/store"
)

const (
	msgGroupOnly = "This command works in group chats."

	msgPromptBirthday    = "Enter your birthday as DD.MM.YYYY:"
	msgPromptEmail       = "Enter your email address:"
	msgPromptPhone       = "Enter your phone number starting with +:"
	msgPromptFullName    = "Enter your preferred display name:"
	msgPromptDescription = "Enter the group description (up to 500 characters):"

	msgInvalidBirthday    = "Invalid date. Use the DD.MM.YYYY format:"
	msgInvalidEmail       = "Invalid email address. Try again:"
	msgInvalidPhone       = "Invalid phone number. Use + followed by digits:"
	msgInvalidFullName    = "Display name cannot be empty:"
	msgInvalidDescription = "Description is too long (500 characters max). Try again:"

	msgSetLogLevelUsage  = "Usage: /setloglevel DEBUG|INFO|ERROR"
	msgUnsupportedLevel  = "Unsupported level. Use DEBUG, INFO or ERROR."
	msgLogLevelNotSet    = "Current log level: ERROR (default).\nLog chat: not set."
	msgDescriptionSaved  = "Group description updated."
	msgBirthdayToday     = "%s, today is your birthday! Congratulations!"
	msgBirthdayCountdown = "%s, %d day(s) left until your birthday (%s)."
)

func (r *Router) cmdStart(ctx context.Context, msg *models.Message, _ string) error {
	profile, created, err := r.profiles.GetOrCreate(ctx, msg.From.ID, attrsFromUser(msg.From))
	if err != nil {
		return err
	}

	if created {
		return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Hi, %s! Your profile has been created.", profile.DisplayName()))
	}
	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Hi, %s! Good to see you again.", profile.DisplayName()))
}

func (r *Router) cmdCancel(ctx context.Context, msg *models.Message, _ string) error {
	key := conversation.Key{ChatID: msg.Chat.ID, UserID: msg.From.ID}

	if r.conversations.Clear(key) {
		return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("%s, input canceled.", msg.From.FirstName))
	}
	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("%s, you are not in input mode.", msg.From.FirstName))
}

func (r *Router) cmdBirthday(ctx context.Context, msg *models.Message, _ string) error {
	profile, _, err := r.profiles.GetOrCreate(ctx, msg.From.ID, attrsFromUser(msg.From))
	if err != nil {
		return err
	}

	if profile.Birthday == nil {
		r.conversations.Set(conversation.Key{ChatID: msg.Chat.ID, UserID: msg.From.ID}, conversation.State{
			Stage: conversation.StageAwaitingBirthday,
		})
		return r.reply(ctx, msg.Chat.ID, msgPromptBirthday)
	}

	days := daysUntilBirthday(*profile.Birthday, r.now())
	if days == 0 {
		return r.reply(ctx, msg.Chat.ID, fmt.Sprintf(msgBirthdayToday, profile.DisplayName()))
	}
	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf(msgBirthdayCountdown,
		profile.DisplayName(), days, profile.Birthday.Format(conversation.BirthdayLayout)))
}

func (r *Router) cmdContact(ctx context.Context, msg *models.Message, _ string) error {
	profile, _, err := r.profiles.GetOrCreate(ctx, msg.From.ID, attrsFromUser(msg.From))
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, contact details:\n", profile.DisplayName())
	fmt.Fprintf(&b, "Telegram ID: %d\n", profile.TelegramID)
	if profile.Username != "" {
		fmt.Fprintf(&b, "Username: @%s\n", profile.Username)
	}
	if profile.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", profile.Email)
	}
	if profile.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", profile.Phone)
	}
	if profile.Birthday != nil {
		fmt.Fprintf(&b, "Birthday: %s\n", profile.Birthday.Format(conversation.BirthdayLayout))
	}
	b.WriteString("\nUpdate with /setfullname, /setemail, /setphone, /setbirthday.")

	return r.reply(ctx, msg.Chat.ID, b.String())
}

func (r *Router) cmdGroup(ctx context.Context, msg *models.Message, _ string) error {
	group, err := r.groups.GetByTelegramID(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}

	members, err := r.groups.Members(ctx, group.TelegramID)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Members of %q (%d):\n", group.Title, len(members))
	for _, member := range members {
		fmt.Fprintf(&b, "- %s\n", member.DisplayName())
	}
	if group.Description != "" {
		fmt.Fprintf(&b, "\n%s", group.Description)
	}

	return r.reply(ctx, msg.Chat.ID, strings.TrimRight(b.String(), "\n"))
}

func (r *Router) cmdSetDescription(ctx context.Context, msg *models.Message, _ string) error {
	r.conversations.Set(conversation.Key{ChatID: msg.Chat.ID, UserID: msg.From.ID}, conversation.State{
		Stage:   conversation.StageAwaitingGroupDescription,
		GroupID: msg.Chat.ID,
	})
	return r.reply(ctx, msg.Chat.ID, msgPromptDescription)
}

func (r *Router) cmdSetLogLevel(ctx context.Context, msg *models.Message, arg string) error {
	if strings.TrimSpace(arg) == "" {
		return r.reply(ctx, msg.Chat.ID, msgSetLogLevelUsage)
	}

	level, err := domain.ParseLevel(arg)
	if err != nil {
		return r.reply(ctx, msg.Chat.ID, msgUnsupportedLevel)
	}

	if err := r.logSettings.SetLevel(ctx, level, msg.Chat.ID); err != nil {
		return err
	}

	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Log level set to %s.", level))
}

func (r *Router) cmdGetLogLevel(ctx context.Context, msg *models.Message, _ string) error {
	settings, err := r.logSettings.Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return r.reply(ctx, msg.Chat.ID, msgLogLevelNotSet)
		}
		return err
	}

	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Current log level: %s.\nLog chat: %d.", settings.Level, settings.ChatID))
}

// promptFor enters an input-collection stage. The profile is resolved up
// front so the completion handler always has a row to update.
func (r *Router) promptFor(stage conversation.Stage, prompt string) handlerFunc {
	return func(ctx context.Context, msg *models.Message, _ string) error {
		if _, _, err := r.profiles.GetOrCreate(ctx, msg.From.ID, attrsFromUser(msg.From)); err != nil {
			return err
		}

		r.conversations.Set(conversation.Key{ChatID: msg.Chat.ID, UserID: msg.From.ID}, conversation.State{Stage: stage})
		return r.reply(ctx, msg.Chat.ID, prompt)
	}
}

// handleStageInput consumes a free-text message while an input stage is
// pending. Validation failures re-prompt and keep the stage; persistence
// failures clear the stage and bubble up for classification; success clears
// the stage and confirms.
func (r *Router) handleStageInput(ctx context.Context, msg *models.Message, key conversation.Key, state conversation.State) error {
	text := strings.TrimSpace(msg.Text)

	switch state.Stage {
	case conversation.StageAwaitingBirthday:
		birthday, ok := conversation.ParseBirthday(text)
		if !ok {
			return r.reply(ctx, msg.Chat.ID, msgInvalidBirthday)
		}
		return r.completeStage(ctx, msg, key,
			r.profiles.SetBirthday(ctx, msg.From.ID, birthday),
			fmt.Sprintf("Birthday saved: %s.", birthday.Format(conversation.BirthdayLayout)))

	case conversation.StageAwaitingEmail:
		if !conversation.ValidEmail(text) {
			return r.reply(ctx, msg.Chat.ID, msgInvalidEmail)
		}
		return r.completeStage(ctx, msg, key,
			r.profiles.SetEmail(ctx, msg.From.ID, text),
			fmt.Sprintf("Email saved: %s.", text))

	case conversation.StageAwaitingPhone:
		if !conversation.ValidPhone(text) {
			return r.reply(ctx, msg.Chat.ID, msgInvalidPhone)
		}
		return r.completeStage(ctx, msg, key,
			r.profiles.SetPhone(ctx, msg.From.ID, text),
			fmt.Sprintf("Phone saved: %s.", text))

	case conversation.StageAwaitingFullName:
		if text == "" {
			return r.reply(ctx, msg.Chat.ID, msgInvalidFullName)
		}
		return r.completeStage(ctx, msg, key,
			r.profiles.SetFullDisplayName(ctx, msg.From.ID, text),
			fmt.Sprintf("Display name saved: %s.", text))

	case conversation.StageAwaitingGroupDescription:
		if !conversation.ValidGroupDescription(text) {
			return r.reply(ctx, msg.Chat.ID, msgInvalidDescription)
		}
		return r.completeStage(ctx, msg, key,
			r.groups.SetDescription(ctx, state.GroupID, text),
			msgDescriptionSaved)
	}

	r.conversations.Clear(key)
	return nil
}

func (r *Router) completeStage(ctx context.Context, msg *models.Message, key conversation.Key, saveErr error, confirmation string) error {
	r.conversations.Clear(key)

	if saveErr != nil {
		return saveErr
	}
	return r.reply(ctx, msg.Chat.ID, confirmation)
}

// daysUntilBirthday counts whole days from today to the next anniversary of
// the birthday, 0 on the day itself.
func daysUntilBirthday(birthday, today time.Time) int {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	next := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = next.AddDate(1, 0, 0)
	}

	return int(next.Sub(today).Hours() / 24)
}
