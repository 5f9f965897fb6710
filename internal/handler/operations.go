package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cfbot/internal/model"
	"cfbot/internal/service"
)

var recordTypes = map[string]bool{
	"A": true, "AAAA": true, "CNAME": true, "TXT": true, "MX": true, "NS": true, "SRV": true, "CAA": true,
}

func creds(sess *model.Session) service.Credentials {
	return service.Credentials{ZoneID: sess.ZoneID, APIToken: sess.APIToken}
}

// backToMenu is the post-operation transition: every finished operation,
// successful or not, returns the conversation to the menu. Validation
// failures do NOT call it, so the user can retry in place.
func (c *Controller) backToMenu(sess *model.Session) {
	sess.Step = model.StepMenu
	c.sessions.Put(sess)
}

// parseAddArgs accepts "<name> <content> [ttl] [proxied]" (type A) or
// "<type> <name> <content> [ttl] [proxied]".
func (c *Controller) parseAddArgs(args string) (model.RecordInput, error) {
	fields := strings.Fields(args)

	in := model.RecordInput{
		Type:    "A",
		TTL:     c.records.DefaultTTL,
		Proxied: boolPtr(c.records.DefaultProxied),
	}

	if len(fields) > 0 && recordTypes[strings.ToUpper(fields[0])] {
		in.Type = strings.ToUpper(fields[0])
		fields = fields[1:]
	}
	if len(fields) < 2 {
		return model.RecordInput{}, fmt.Errorf("expected at least a name and a content value")
	}

	in.Name = fields[0]
	in.Content = fields[1]

	if len(fields) > 2 {
		ttl, err := strconv.Atoi(fields[2])
		if err != nil {
			return model.RecordInput{}, fmt.Errorf("invalid ttl %q", fields[2])
		}
		in.TTL = ttl
	}
	if len(fields) > 3 {
		proxied, err := strconv.ParseBool(fields[3])
		if err != nil {
			return model.RecordInput{}, fmt.Errorf("invalid proxied flag %q", fields[3])
		}
		in.Proxied = &proxied
	}
	if len(fields) > 4 {
		return model.RecordInput{}, fmt.Errorf("too many arguments")
	}
	return in, nil
}

func (c *Controller) runAdd(ctx context.Context, in Incoming, sess *model.Session, args string) {
	input, err := c.parseAddArgs(args)
	if err != nil {
		c.reply(ctx, in.ChatID, msgUsageAdd)
		return
	}

	rec, err := c.provider.CreateRecord(ctx, creds(sess), input)
	c.backToMenu(sess)
	if err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}

	c.audit(ctx, in, "add_record", fmt.Sprintf("[%s] %s -> %s", rec.Type, rec.Name, rec.Content))
	c.reply(ctx, in.ChatID, fmt.Sprintf("✅ Record added:\n[%s] %s ➡️ %s", rec.Type, rec.Name, rec.Content))
}

func (c *Controller) runList(ctx context.Context, in Incoming, sess *model.Session) {
	records, err := c.provider.ListRecords(ctx, creds(sess))
	if err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}
	c.audit(ctx, in, "list_records", fmt.Sprintf("%d records", len(records)))
	if len(records) == 0 {
		c.reply(ctx, in.ChatID, "The zone has no DNS records.")
		return
	}
	c.replyMarkdown(ctx, in.ChatID, formatRecords("DNS records:", records))
}

func (c *Controller) runDelete(ctx context.Context, in Incoming, sess *model.Session, args string) {
	recordID := strings.TrimSpace(args)
	if recordID == "" || len(strings.Fields(recordID)) != 1 {
		c.reply(ctx, in.ChatID, msgUsageDelete)
		return
	}

	err := c.provider.DeleteRecord(ctx, creds(sess), recordID)
	c.backToMenu(sess)
	if err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}

	c.audit(ctx, in, "delete_record", recordID)
	c.reply(ctx, in.ChatID, "✅ DNS record deleted.")
}

// runUpdate fetches the existing record and merges every field the user
// did not override, matching the provider's full-replace PUT semantics.
func (c *Controller) runUpdate(ctx context.Context, in Incoming, sess *model.Session, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 4 {
		c.reply(ctx, in.ChatID, msgUsageUpdate)
		return
	}
	recordID, newContent := fields[0], fields[1]

	// validate every field before touching the provider
	var ttl *int
	var proxied *bool
	if len(fields) > 2 {
		v, err := strconv.Atoi(fields[2])
		if err != nil {
			c.reply(ctx, in.ChatID, msgUsageUpdate)
			return
		}
		ttl = &v
	}
	if len(fields) > 3 {
		v, err := strconv.ParseBool(fields[3])
		if err != nil {
			c.reply(ctx, in.ChatID, msgUsageUpdate)
			return
		}
		proxied = &v
	}

	old, err := c.provider.GetRecord(ctx, creds(sess), recordID)
	if err != nil {
		c.backToMenu(sess)
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}

	input := model.RecordInput{
		Type:    old.Type,
		Name:    old.Name,
		Content: newContent,
		TTL:     old.TTL,
		Proxied: boolPtr(old.Proxied),
	}
	if ttl != nil {
		input.TTL = *ttl
	}
	if proxied != nil {
		input.Proxied = proxied
	}

	rec, err := c.provider.UpdateRecord(ctx, creds(sess), recordID, input)
	c.backToMenu(sess)
	if err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}

	c.audit(ctx, in, "update_record", fmt.Sprintf("%s -> %s", rec.Name, rec.Content))
	c.reply(ctx, in.ChatID, fmt.Sprintf("✅ Record updated:\n%s ➡️ %s", rec.Name, rec.Content))
}

func (c *Controller) runCheck(ctx context.Context, in Incoming, sess *model.Session, args string) {
	pattern := strings.TrimSpace(args)
	if pattern == "" || len(strings.Fields(pattern)) != 1 {
		c.reply(ctx, in.ChatID, msgUsageCheck)
		return
	}

	results := c.prober.CheckWildcard(ctx, pattern)
	c.backToMenu(sess)
	c.audit(ctx, in, "check_wildcard", pattern)
	c.reply(ctx, in.ChatID, formatProbeResults(pattern, results))
}

func (c *Controller) runPing(ctx context.Context, in Incoming, sess *model.Session, args string) {
	host := strings.TrimSpace(args)
	if host == "" || len(strings.Fields(host)) != 1 {
		c.reply(ctx, in.ChatID, msgUsagePing)
		return
	}

	result := c.prober.Ping(ctx, host)
	c.backToMenu(sess)
	c.audit(ctx, in, "ping", host)
	c.reply(ctx, in.ChatID, formatPingResult(result))
}

func (c *Controller) runBackup(ctx context.Context, in Incoming, sess *model.Session) {
	records, err := c.provider.ListRecords(ctx, creds(sess))
	if err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}
	if records == nil {
		records = []model.DNSRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}

	name := fmt.Sprintf("dns-backup-%s-%s.json", sess.ZoneID, time.Now().UTC().Format("20060102"))
	if err := c.transport.SendDocument(ctx, in.ChatID, name, data); err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}

	c.audit(ctx, in, "backup", fmt.Sprintf("%d records", len(records)))
	c.reply(ctx, in.ChatID, fmt.Sprintf("✅ Backup sent: %d records.", len(records)))
}

// restoreRecord is the permissive backup-element shape: unknown fields are
// ignored, absent ttl/proxied stay unset so the provider applies defaults.
type restoreRecord struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied *bool  `json:"proxied"`
}

func (c *Controller) runRestore(ctx context.Context, in Incoming, sess *model.Session) {
	data, err := c.transport.FetchDocument(ctx, in.Document.FileID)
	if err != nil {
		c.backToMenu(sess)
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}

	var records []restoreRecord
	if err := json.Unmarshal(data, &records); err != nil {
		c.backToMenu(sess)
		c.reply(ctx, in.ChatID, msgRestoreBadFormat)
		return
	}

	// one failing record never aborts the rest
	var ok, failed int
	for _, r := range records {
		_, err := c.provider.CreateRecord(ctx, creds(sess), model.RecordInput{
			Type:    r.Type,
			Name:    r.Name,
			Content: r.Content,
			TTL:     r.TTL,
			Proxied: r.Proxied,
		})
		if err != nil {
			failed++
			continue
		}
		ok++
	}

	c.backToMenu(sess)
	c.audit(ctx, in, "restore", fmt.Sprintf("ok=%d failed=%d", ok, failed))
	c.reply(ctx, in.ChatID, fmt.Sprintf("Restore finished: %d restored, %d failed.", ok, failed))
}

func (c *Controller) runSearch(ctx context.Context, in Incoming, sess *model.Session, keyword string) {
	records, err := c.provider.ListRecords(ctx, creds(sess))
	if err != nil {
		c.reply(ctx, in.ChatID, errorReply(err))
		return
	}

	c.audit(ctx, in, "search", keyword)

	kw := strings.ToLower(keyword)
	var matches []model.DNSRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), kw) || strings.Contains(strings.ToLower(r.Content), kw) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		c.reply(ctx, in.ChatID, fmt.Sprintf("No records match %q.", keyword))
		return
	}
	c.replyMarkdown(ctx, in.ChatID, formatRecords(fmt.Sprintf("Records matching %q:", keyword), matches))
}

func boolPtr(b bool) *bool { return &b }
