package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudflare/cloudflare-go"

	"cfbot/internal/model"
)

const providerTimeout = 15 * time.Second

// CloudflareProvider talks to the Cloudflare v4 API. Tokens differ per
// conversation, so an API handle is built per call rather than held.
type CloudflareProvider struct {
	httpClient *http.Client
	baseURL    string // overridden in tests
}

func NewCloudflareProvider() *CloudflareProvider {
	return &CloudflareProvider{
		httpClient: &http.Client{Timeout: providerTimeout},
	}
}

func (p *CloudflareProvider) api(token string) (*cloudflare.API, error) {
	api, err := cloudflare.NewWithAPIToken(token, cloudflare.HTTPClient(p.httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudflare api: %w", err)
	}
	if p.baseURL != "" {
		api.BaseURL = p.baseURL
	}
	return api, nil
}

func (p *CloudflareProvider) CreateRecord(ctx context.Context, creds Credentials, in model.RecordInput) (model.DNSRecord, error) {
	api, err := p.api(creds.APIToken)
	if err != nil {
		return model.DNSRecord{}, err
	}

	rec, err := api.CreateDNSRecord(ctx, cloudflare.ZoneIdentifier(creds.ZoneID), cloudflare.CreateDNSRecordParams{
		Type:    in.Type,
		Name:    in.Name,
		Content: in.Content,
		TTL:     in.TTL,
		Proxied: in.Proxied,
	})
	if err != nil {
		return model.DNSRecord{}, err
	}
	return fromCloudflare(rec), nil
}

func (p *CloudflareProvider) ListRecords(ctx context.Context, creds Credentials) ([]model.DNSRecord, error) {
	api, err := p.api(creds.APIToken)
	if err != nil {
		return nil, err
	}

	zone := cloudflare.ZoneIdentifier(creds.ZoneID)
	params := cloudflare.ListDNSRecordsParams{
		ResultInfo: cloudflare.ResultInfo{PerPage: 100},
	}

	var records []model.DNSRecord
	for {
		page, info, err := api.ListDNSRecords(ctx, zone, params)
		if err != nil {
			return nil, err
		}
		for _, rec := range page {
			records = append(records, fromCloudflare(rec))
		}
		if info == nil || info.Page >= info.TotalPages {
			break
		}
		params.ResultInfo.Page = info.Page + 1
	}
	return records, nil
}

func (p *CloudflareProvider) GetRecord(ctx context.Context, creds Credentials, recordID string) (model.DNSRecord, error) {
	api, err := p.api(creds.APIToken)
	if err != nil {
		return model.DNSRecord{}, err
	}

	rec, err := api.GetDNSRecord(ctx, cloudflare.ZoneIdentifier(creds.ZoneID), recordID)
	if err != nil {
		return model.DNSRecord{}, err
	}
	return fromCloudflare(rec), nil
}

func (p *CloudflareProvider) UpdateRecord(ctx context.Context, creds Credentials, recordID string, in model.RecordInput) (model.DNSRecord, error) {
	api, err := p.api(creds.APIToken)
	if err != nil {
		return model.DNSRecord{}, err
	}

	rec, err := api.UpdateDNSRecord(ctx, cloudflare.ZoneIdentifier(creds.ZoneID), cloudflare.UpdateDNSRecordParams{
		ID:      recordID,
		Type:    in.Type,
		Name:    in.Name,
		Content: in.Content,
		TTL:     in.TTL,
		Proxied: in.Proxied,
	})
	if err != nil {
		return model.DNSRecord{}, err
	}
	return fromCloudflare(rec), nil
}

func (p *CloudflareProvider) DeleteRecord(ctx context.Context, creds Credentials, recordID string) error {
	api, err := p.api(creds.APIToken)
	if err != nil {
		return err
	}
	return api.DeleteDNSRecord(ctx, cloudflare.ZoneIdentifier(creds.ZoneID), recordID)
}

func fromCloudflare(rec cloudflare.DNSRecord) model.DNSRecord {
	out := model.DNSRecord{
		ID:      rec.ID,
		Type:    rec.Type,
		Name:    rec.Name,
		Content: rec.Content,
		TTL:     rec.TTL,
	}
	if rec.Proxied != nil {
		out.Proxied = *rec.Proxied
	}
	return out
}
