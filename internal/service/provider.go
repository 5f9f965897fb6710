package service

import (
	"context"

	"cfbot/internal/model"
)

// Credentials are supplied per conversation during onboarding; the bot
// holds no provider credentials of its own.
type Credentials struct {
	ZoneID   string
	APIToken string
}

// Provider is the remote DNS API consumed by the controller. Cloudflare is
// the only implementation; the interface keeps the controller testable.
type Provider interface {
	CreateRecord(ctx context.Context, creds Credentials, in model.RecordInput) (model.DNSRecord, error)
	ListRecords(ctx context.Context, creds Credentials) ([]model.DNSRecord, error)
	GetRecord(ctx context.Context, creds Credentials, recordID string) (model.DNSRecord, error)
	UpdateRecord(ctx context.Context, creds Credentials, recordID string, in model.RecordInput) (model.DNSRecord, error)
	DeleteRecord(ctx context.Context, creds Credentials, recordID string) error
}
