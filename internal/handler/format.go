package handler

import (
	"fmt"
	"strings"
	"time"

	"cfbot/internal/model"
)

// menu action tags, shared by inline buttons and the command handlers
const (
	actionAdd     = "op:add"
	actionList    = "op:list"
	actionDelete  = "op:delete"
	actionUpdate  = "op:update"
	actionCheck   = "op:check"
	actionBackup  = "op:backup"
	actionRestore = "op:restore"
	actionPing    = "op:ping"
	actionHelp    = "op:help"
	actionLogout  = "op:logout"
)

const (
	msgWelcome = "👋 *Welcome to the Cloudflare DNS bot!*\n\n" +
		"To get started, send me your *Cloudflare Account ID*."
	msgAskZoneID = "Now send the Zone ID of the domain you want to manage:"
	msgAskToken  = "Finally, send a Cloudflare API token with DNS edit access:"
	msgConnected = "✅ Cloudflare connected! Pick an action:"
	msgMenu      = "Pick an action:"

	msgSetupRequired  = "⚠️ Please run /start and finish the Cloudflare setup first."
	msgAdminOnly      = "This command is available to the bot admin only."
	msgNoStore        = "User tracking is not enabled on this deployment."
	msgLoggedOut      = "Session closed. Send /start to connect again."
	msgUnknownCommand = "Unknown command. Send /help for the list of commands."

	msgAskAdd     = "Send the record to add:\n<name> <content> [ttl] [proxied]\nor\n<type> <name> <content> [ttl] [proxied]\n\nExample: *.example.com 1.2.3.4"
	msgAskDelete  = "Send the id of the record to delete (see /list)."
	msgAskUpdate  = "Send: <record_id> <new_content> [ttl] [proxied]"
	msgAskCheck   = "Send the domain to check, e.g. *.example.com"
	msgAskRestore = "Send the backup file (a JSON array of records) as a document."
	msgAskPing    = "Send the hostname to ping, e.g. www.example.com"

	msgUsageAdd    = "❌ Wrong format.\nUse: <name> <content> [ttl] [proxied]\nExample: *.example.com 1.2.3.4 3600 false"
	msgUsageDelete = "❌ Wrong format.\nUse: <record_id>\nExample: 372e67954025e0ba6aaa6d586b9e0b59"
	msgUsageUpdate = "❌ Wrong format.\nUse: <record_id> <new_content> [ttl] [proxied]\nExample: 372e67954025e0ba6aaa6d586b9e0b59 5.6.7.8"
	msgUsageCheck  = "❌ Wrong format.\nUse: *.example.com"
	msgUsagePing   = "❌ Wrong format.\nUse: www.example.com"
	msgUsageSearch = "Use: /search <keyword>"

	msgRestoreWantFile  = "Please send the backup as a file attachment, not as text."
	msgRestoreBadFormat = "❌ That file is not a JSON array of DNS records."
)

const helpText = `Cloudflare DNS bot commands:

/start - connect a Cloudflare account
/menu - show the action menu
/add <name> <content> [ttl] [proxied] - add a record (type A)
/add <type> <name> <content> - add a record of any type
/list - list DNS records
/del <record_id> - delete a record
/update <record_id> <content> [ttl] [proxied] - update a record
/check *.example.com - probe common subdomains
/backup - export all records as a JSON file
/restore - re-create records from a backup file
/ping <host> - reachability check
/search <keyword> - find records by name or content
/instructions - setup walk-through
/logout - forget this chat's credentials`

const instructionsText = `*How to connect Cloudflare*

1. Open the Cloudflare dashboard and copy your *Account ID* (Overview page, right column).
2. Copy the *Zone ID* of the domain you want to manage (same page).
3. Create an *API token* with the "Edit zone DNS" template, scoped to that zone.
4. Send /start here and paste the three values when asked.

The token is kept in memory only and is forgotten on /logout or when the bot restarts.`

func menuKeyboard() [][]Button {
	return [][]Button{
		{{Label: "➕ Add record", Data: actionAdd}, {Label: "📋 List records", Data: actionList}},
		{{Label: "✏️ Update record", Data: actionUpdate}, {Label: "🗑 Delete record", Data: actionDelete}},
		{{Label: "💾 Backup", Data: actionBackup}, {Label: "♻️ Restore", Data: actionRestore}},
		{{Label: "🔍 Check wildcard", Data: actionCheck}, {Label: "📡 Ping", Data: actionPing}},
		{{Label: "ℹ️ Help", Data: actionHelp}, {Label: "🚪 Logout", Data: actionLogout}},
	}
}

func formatRecords(title string, records []model.DNSRecord) string {
	var b strings.Builder
	b.WriteString("*" + title + "*\n\n")
	for _, r := range records {
		fmt.Fprintf(&b, "• [%s] %s ➡️ %s\n", r.Type, r.Name, r.Content)
		fmt.Fprintf(&b, "    ID: `%s`  TTL: %s  Proxied: %v\n", r.ID, formatTTL(r.TTL), r.Proxied)
	}
	return b.String()
}

func formatTTL(ttl int) string {
	if ttl <= 1 {
		return "auto"
	}
	return fmt.Sprintf("%d", ttl)
}

func formatProbeResults(pattern string, results []model.ProbeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Wildcard check for %s:\n\n", pattern)
	for _, r := range results {
		if r.Err != nil || len(r.Addresses) == 0 {
			fmt.Fprintf(&b, "❌ %s did not resolve\n", r.Host)
			continue
		}
		fmt.Fprintf(&b, "✅ %s -> %s\n", r.Host, strings.Join(r.Addresses, ", "))
	}
	return b.String()
}

func formatPingResult(r model.PingResult) string {
	if !r.Reachable {
		return fmt.Sprintf("❌ %s is not reachable: %v", r.Host, r.Err)
	}
	return fmt.Sprintf("✅ %s (%s) is reachable on port %s in %s", r.Host, r.Address, r.Port, r.Latency.Round(time.Millisecond))
}

// errorReply surfaces the provider's message; cloudflare-go folds the API's
// structured errors into err.Error().
func errorReply(err error) string {
	return "❌ Error: " + err.Error()
}
