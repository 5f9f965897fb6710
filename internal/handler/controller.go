// Package handler implements the conversation controller: a per-chat state
// machine that turns Telegram events into Cloudflare DNS operations.
package handler

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"cfbot/internal/config"
	"cfbot/internal/database"
	"cfbot/internal/model"
	"cfbot/internal/service"
	"cfbot/internal/session"
)

// Document is an uploaded file reference; the bytes are fetched lazily
// through the transport.
type Document struct {
	FileID   string
	FileName string
}

// Callback is an inline-keyboard button press.
type Callback struct {
	ID   string
	Data string
}

// Incoming is one transport event attributed to a conversation.
type Incoming struct {
	ChatID   int64
	From     model.UserInfo
	Text     string
	Document *Document
	Callback *Callback
}

// Button is one inline-keyboard entry; Data round-trips through the
// transport back into Incoming.Callback.Data.
type Button struct {
	Label string
	Data  string
}

// Transport is the outbound side of the chat. Sends are fire-and-forget
// from the controller's point of view; errors are logged, not retried.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMarkdown(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]Button) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte) error
	AnswerCallback(ctx context.Context, callbackID string) error
	FetchDocument(ctx context.Context, fileID string) ([]byte, error)
}

// Controller drives one conversation at a time; the bot layer guarantees
// events for the same chat arrive here sequentially.
type Controller struct {
	sessions  session.Store
	provider  service.Provider
	prober    service.Prober
	store     database.Store
	transport Transport
	log       *zap.Logger

	records config.RecordsConfig
	adminID int64
}

func New(
	sessions session.Store,
	provider service.Provider,
	prober service.Prober,
	store database.Store,
	transport Transport,
	log *zap.Logger,
	records config.RecordsConfig,
	adminID int64,
) *Controller {
	return &Controller{
		sessions:  sessions,
		provider:  provider,
		prober:    prober,
		store:     store,
		transport: transport,
		log:       log,
		records:   records,
		adminID:   adminID,
	}
}

// Handle processes one inbound event to completion.
func (c *Controller) Handle(ctx context.Context, in Incoming) {
	c.trackUser(ctx, in)

	switch {
	case in.Callback != nil:
		if err := c.transport.AnswerCallback(ctx, in.Callback.ID); err != nil {
			c.log.Warn("failed to answer callback", zap.Error(err))
		}
		c.handleAction(ctx, in, in.Callback.Data)

	case strings.HasPrefix(strings.TrimSpace(in.Text), "/"):
		c.handleCommand(ctx, in)

	case in.Document != nil:
		c.handleDocument(ctx, in)

	default:
		c.handleText(ctx, in)
	}
}

// handleText runs the current step's transition for plain text input.
func (c *Controller) handleText(ctx context.Context, in Incoming) {
	text := strings.TrimSpace(in.Text)
	sess, ok := c.sessions.Get(in.ChatID)
	if !ok {
		return // stray text before /start is ignored
	}

	switch sess.Step {
	case model.StepAccountID:
		sess.AccountID = text
		sess.Step = model.StepZoneID
		c.sessions.Put(sess)
		c.reply(ctx, in.ChatID, msgAskZoneID)

	case model.StepZoneID:
		sess.ZoneID = text
		sess.Step = model.StepToken
		c.sessions.Put(sess)
		c.reply(ctx, in.ChatID, msgAskToken)

	case model.StepToken:
		sess.APIToken = text
		sess.Step = model.StepMenu
		c.sessions.Put(sess)
		c.audit(ctx, in, "setup_complete", "")
		c.sendMenu(ctx, in.ChatID, msgConnected)

	case model.StepAddRecord:
		c.runAdd(ctx, in, sess, text)

	case model.StepDeleteRecord:
		c.runDelete(ctx, in, sess, text)

	case model.StepUpdateRecord:
		c.runUpdate(ctx, in, sess, text)

	case model.StepCheckWildcard:
		c.runCheck(ctx, in, sess, text)

	case model.StepPing:
		c.runPing(ctx, in, sess, text)

	case model.StepRestore:
		c.reply(ctx, in.ChatID, msgRestoreWantFile)

	default:
		// menu: stray text is a no-op
	}
}

// handleAction maps a menu action tag (button press or argument-less
// command) onto the state machine.
func (c *Controller) handleAction(ctx context.Context, in Incoming, action string) {
	sess, ok := c.sessions.Get(in.ChatID)

	switch action {
	case actionHelp:
		c.reply(ctx, in.ChatID, helpText)
		return
	case actionLogout:
		c.logout(ctx, in)
		return
	}

	if !ok || !sess.Ready() {
		c.reply(ctx, in.ChatID, msgSetupRequired)
		return
	}

	switch action {
	case actionAdd:
		c.askFor(ctx, sess, model.StepAddRecord, msgAskAdd)
	case actionList:
		c.runList(ctx, in, sess)
	case actionDelete:
		c.askFor(ctx, sess, model.StepDeleteRecord, msgAskDelete)
	case actionUpdate:
		c.askFor(ctx, sess, model.StepUpdateRecord, msgAskUpdate)
	case actionCheck:
		c.askFor(ctx, sess, model.StepCheckWildcard, msgAskCheck)
	case actionBackup:
		c.runBackup(ctx, in, sess)
	case actionRestore:
		c.askFor(ctx, sess, model.StepRestore, msgAskRestore)
	case actionPing:
		c.askFor(ctx, sess, model.StepPing, msgAskPing)
	default:
		c.log.Debug("unknown action", zap.String("action", action))
	}
}

func (c *Controller) askFor(ctx context.Context, sess *model.Session, step model.Step, prompt string) {
	sess.Step = step
	c.sessions.Put(sess)
	c.reply(ctx, sess.ChatID, prompt)
}

func (c *Controller) handleDocument(ctx context.Context, in Incoming) {
	sess, ok := c.sessions.Get(in.ChatID)
	if !ok || sess.Step != model.StepRestore {
		return
	}
	if !sess.Ready() {
		c.reply(ctx, in.ChatID, msgSetupRequired)
		return
	}
	c.runRestore(ctx, in, sess)
}

func (c *Controller) logout(ctx context.Context, in Incoming) {
	c.sessions.Delete(in.ChatID)
	c.audit(ctx, in, "logout", "")
	c.reply(ctx, in.ChatID, msgLoggedOut)
}

func (c *Controller) isAdmin(u model.UserInfo) bool {
	return c.adminID != 0 && u.ID == c.adminID
}

// reply sends plain text; a send failure is observable but only logged.
func (c *Controller) reply(ctx context.Context, chatID int64, text string) {
	if err := c.transport.SendText(ctx, chatID, text); err != nil {
		c.log.Warn("failed to send reply", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (c *Controller) replyMarkdown(ctx context.Context, chatID int64, text string) {
	if err := c.transport.SendMarkdown(ctx, chatID, text); err != nil {
		c.log.Warn("failed to send reply", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (c *Controller) sendMenu(ctx context.Context, chatID int64, text string) {
	if err := c.transport.SendKeyboard(ctx, chatID, text, menuKeyboard()); err != nil {
		c.log.Warn("failed to send menu", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (c *Controller) trackUser(ctx context.Context, in Incoming) {
	if c.store == nil || in.From.ID == 0 {
		return
	}
	err := c.store.RecordUser(ctx, model.User{
		ID:        in.From.ID,
		Username:  in.From.Username,
		FirstName: in.From.FirstName,
		LastName:  in.From.LastName,
		SeenAt:    time.Now().UTC(),
	})
	if err != nil {
		c.log.Warn("failed to record user", zap.Int64("user", in.From.ID), zap.Error(err))
	}
}

// audit appends to the activity log. Detail must never contain
// credentials; onboarding steps pass it empty.
func (c *Controller) audit(ctx context.Context, in Incoming, action, detail string) {
	if c.store == nil {
		return
	}
	err := c.store.AppendAudit(ctx, model.AuditEntry{
		Time:      time.Now().UTC(),
		UserID:    in.From.ID,
		Username:  in.From.Username,
		FirstName: in.From.FirstName,
		Action:    action,
		Detail:    detail,
	})
	if err != nil {
		c.log.Warn("failed to append audit entry", zap.Error(err))
	}
}
