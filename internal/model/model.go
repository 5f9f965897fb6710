package model

import "time"

// Step identifies how the next plain-text input from a conversation is
// interpreted by the controller.
type Step int

const (
	StepAccountID Step = iota
	StepZoneID
	StepToken
	StepMenu
	StepAddRecord
	StepDeleteRecord
	StepUpdateRecord
	StepCheckWildcard
	StepRestore
	StepPing
)

func (s Step) String() string {
	switch s {
	case StepAccountID:
		return "account_id"
	case StepZoneID:
		return "zone_id"
	case StepToken:
		return "token"
	case StepMenu:
		return "menu"
	case StepAddRecord:
		return "add_record"
	case StepDeleteRecord:
		return "delete_record"
	case StepUpdateRecord:
		return "update_record"
	case StepCheckWildcard:
		return "check_wildcard"
	case StepRestore:
		return "restore"
	case StepPing:
		return "ping"
	}
	return "menu"
}

// Session holds everything the bot knows about one conversation. Sessions
// live in memory only; a restart logs everybody out.
type Session struct {
	ChatID    int64
	Step      Step
	AccountID string
	ZoneID    string
	APIToken  string
}

// Ready reports whether the session carries the credentials every DNS
// operation requires.
func (s *Session) Ready() bool {
	return s != nil && s.ZoneID != "" && s.APIToken != ""
}

// UserInfo is the sender identity attached to every inbound event.
type UserInfo struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DNSRecord mirrors the provider's record shape. The bot never caches
// these; every operation re-fetches.
type DNSRecord struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl,omitempty"`
	Proxied bool   `json:"proxied,omitempty"`
}

// RecordInput is the create/update payload. A zero TTL and a nil Proxied
// are omitted from the provider call so its own defaults apply.
type RecordInput struct {
	Type    string
	Name    string
	Content string
	TTL     int
	Proxied *bool
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	SeenAt    time.Time `json:"seen_at"`
}

type AuditEntry struct {
	Time      time.Time `json:"time"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
}

// ProbeResult is one line of a wildcard check: the probed host plus either
// the resolved addresses or the lookup error.
type ProbeResult struct {
	Host      string
	Addresses []string
	Err       error
}

// PingResult reports a reachability probe against a single host.
type PingResult struct {
	Host      string
	Address   string
	Port      string
	Latency   time.Duration
	Reachable bool
	Err       error
}
