package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfbot/internal/model"
)

func testProvider(t *testing.T, mux *http.ServeMux) *CloudflareProvider {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	p := NewCloudflareProvider()
	p.baseURL = server.URL
	return p
}

func testCreds() Credentials {
	return Credentials{ZoneID: "zone1", APIToken: "token1"}
}

func TestCreateRecord(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones/zone1/dns_records", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer token1", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "A", body["type"])
		assert.Equal(t, "*.example.com", body["name"])
		assert.Equal(t, "1.2.3.4", body["content"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"errors":[],"messages":[],"result":
			{"id":"rec1","type":"A","name":"*.example.com","content":"1.2.3.4","ttl":3600,"proxied":false}}`))
	})

	p := testProvider(t, mux)
	rec, err := p.CreateRecord(context.Background(), testCreds(), model.RecordInput{
		Type: "A", Name: "*.example.com", Content: "1.2.3.4", TTL: 3600,
	})

	require.NoError(t, err)
	assert.Equal(t, "rec1", rec.ID)
	assert.Equal(t, "*.example.com", rec.Name)
	assert.Equal(t, 3600, rec.TTL)
}

func TestListRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones/zone1/dns_records", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"errors":[],"messages":[],"result":[
			{"id":"rec1","type":"A","name":"a.example.com","content":"1.1.1.1","ttl":300,"proxied":true},
			{"id":"rec2","type":"TXT","name":"b.example.com","content":"hello","ttl":1}],
			"result_info":{"page":1,"per_page":100,"total_pages":1,"count":2,"total_count":2}}`))
	})

	p := testProvider(t, mux)
	records, err := p.ListRecords(context.Background(), testCreds())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec1", records[0].ID)
	assert.True(t, records[0].Proxied)
	assert.Equal(t, "TXT", records[1].Type)
}

func TestDeleteRecordErrorSurfacesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones/zone1/dns_records/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"errors":[{"code":81044,"message":"Record not found"}],"messages":[],"result":null}`))
	})

	p := testProvider(t, mux)
	err := p.DeleteRecord(context.Background(), testCreds(), "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Record not found")
}

func TestUpdateRecord(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones/zone1/dns_records/rec1", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "5.6.7.8", body["content"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"errors":[],"messages":[],"result":
			{"id":"rec1","type":"A","name":"a.example.com","content":"5.6.7.8","ttl":300,"proxied":false}}`))
	})

	p := testProvider(t, mux)
	rec, err := p.UpdateRecord(context.Background(), testCreds(), "rec1", model.RecordInput{
		Type: "A", Name: "a.example.com", Content: "5.6.7.8", TTL: 300,
	})

	require.NoError(t, err)
	assert.Equal(t, "5.6.7.8", rec.Content)
}
