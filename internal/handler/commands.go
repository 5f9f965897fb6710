package handler

import (
	"context"
	"fmt"
	"strings"

	"cfbot/internal/model"
)

// handleCommand routes slash commands. Commands bypass the current step
// entirely; every menu operation also has a direct single-shot form that
// takes its arguments on the command line.
func (c *Controller) handleCommand(ctx context.Context, in Incoming) {
	text := strings.TrimSpace(in.Text)
	cmd, args := splitCommand(text)

	switch cmd {
	case "/start":
		c.start(ctx, in)
		return
	case "/help":
		c.reply(ctx, in.ChatID, helpText)
		return
	case "/instructions":
		c.replyMarkdown(ctx, in.ChatID, instructionsText)
		return
	case "/logout":
		c.logout(ctx, in)
		return
	case "/users":
		c.listUsers(ctx, in)
		return
	case "/log":
		c.showActivityLog(ctx, in)
		return
	}

	sess, ok := c.sessions.Get(in.ChatID)
	if !ok || !sess.Ready() {
		c.reply(ctx, in.ChatID, msgSetupRequired)
		return
	}

	switch cmd {
	case "/menu":
		c.sendMenu(ctx, in.ChatID, msgMenu)

	case "/add", "/addcf":
		if args == "" {
			c.askFor(ctx, sess, model.StepAddRecord, msgAskAdd)
			return
		}
		c.runAdd(ctx, in, sess, args)

	case "/list", "/listcf":
		c.runList(ctx, in, sess)

	case "/del", "/delcf":
		if args == "" {
			c.askFor(ctx, sess, model.StepDeleteRecord, msgAskDelete)
			return
		}
		c.runDelete(ctx, in, sess, args)

	case "/update", "/updatecf":
		if args == "" {
			c.askFor(ctx, sess, model.StepUpdateRecord, msgAskUpdate)
			return
		}
		c.runUpdate(ctx, in, sess, args)

	case "/check", "/cek":
		if args == "" {
			c.askFor(ctx, sess, model.StepCheckWildcard, msgAskCheck)
			return
		}
		c.runCheck(ctx, in, sess, args)

	case "/backup":
		c.runBackup(ctx, in, sess)

	case "/restore":
		c.askFor(ctx, sess, model.StepRestore, msgAskRestore)

	case "/ping":
		if args == "" {
			c.askFor(ctx, sess, model.StepPing, msgAskPing)
			return
		}
		c.runPing(ctx, in, sess, args)

	case "/search":
		if args == "" {
			c.reply(ctx, in.ChatID, msgUsageSearch)
			return
		}
		c.runSearch(ctx, in, sess, args)

	default:
		c.reply(ctx, in.ChatID, msgUnknownCommand)
	}
}

// start creates a fresh session, silently abandoning any prior one.
func (c *Controller) start(ctx context.Context, in Incoming) {
	c.sessions.Put(&model.Session{ChatID: in.ChatID, Step: model.StepAccountID})
	c.audit(ctx, in, "start", "")
	c.replyMarkdown(ctx, in.ChatID, msgWelcome)
}

func (c *Controller) listUsers(ctx context.Context, in Incoming) {
	if !c.isAdmin(in.From) {
		c.reply(ctx, in.ChatID, msgAdminOnly)
		return
	}
	if c.store == nil {
		c.reply(ctx, in.ChatID, msgNoStore)
		return
	}

	users, err := c.store.ListUsers(ctx)
	if err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}
	if len(users) == 0 {
		c.reply(ctx, in.ChatID, "No users seen yet.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Known users (%d):\n\n", len(users))
	for _, u := range users {
		fmt.Fprintf(&b, "• %s %s @%s (id %d) — last seen %s\n",
			u.FirstName, u.LastName, u.Username, u.ID, u.SeenAt.Format("2006-01-02 15:04"))
	}
	c.reply(ctx, in.ChatID, b.String())
}

func (c *Controller) showActivityLog(ctx context.Context, in Incoming) {
	if !c.isAdmin(in.From) {
		c.reply(ctx, in.ChatID, msgAdminOnly)
		return
	}
	if c.store == nil {
		c.reply(ctx, in.ChatID, msgNoStore)
		return
	}

	entries, err := c.store.ListAudit(ctx, 30)
	if err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}
	if len(entries) == 0 {
		c.reply(ctx, in.ChatID, "Activity log is empty.")
		return
	}

	var b strings.Builder
	b.WriteString("Recent activity:\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %s (@%s): %s", e.Time.Format("01-02 15:04"), e.FirstName, e.Username, e.Action)
		if e.Detail != "" {
			fmt.Fprintf(&b, " — %s", e.Detail)
		}
		b.WriteByte('\n')
	}
	c.reply(ctx, in.ChatID, b.String())
}

func splitCommand(text string) (cmd, args string) {
	cmd, args, _ = strings.Cut(text, " ")
	// strip a bot-mention suffix like /list@SomeBot
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}
