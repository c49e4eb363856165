package attio

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhelGc/signals-sync/internal/config"
	"github.com/PhelGc/signals-sync/internal/funnel"
	"github.com/PhelGc/signals-sync/internal/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.AttioConfig{
		APIKey:   "test-key",
		ListSlug: "qualification",
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func decodeBody(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(config.AttioConfig{ListSlug: "x"})
	assert.Error(t, err)
	_, err = NewClient(config.AttioConfig{APIKey: "x"})
	assert.Error(t, err)
}

func TestFindCompanyByDomain(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/objects/companies/records/query", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body := decodeBody(t, r)
		filter := body["filter"].(map[string]interface{})
		assert.Equal(t, "acme.io", filter["domains"].(map[string]interface{})["domain"])

		w.Write([]byte(`{"data":[{"id":{"record_id":"company-1"}}]}`))
	})

	id, err := c.FindCompanyByDomain(context.Background(), "acme.io")
	require.NoError(t, err)
	assert.Equal(t, "company-1", id)
}

func TestFindCompanyByDomain_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.FindCompanyByDomain(context.Background(), "example.com")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestFindDealByCompany(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/objects/deals/records/query", r.URL.Path)
		body := decodeBody(t, r)
		assoc := body["filter"].(map[string]interface{})["associated_company"].(map[string]interface{})
		assert.Equal(t, "companies", assoc["target_object"])
		assert.Equal(t, "company-1", assoc["target_record_id"])

		w.Write([]byte(`{"data":[{"id":{"record_id":"deal-9"}}]}`))
	})

	id, err := c.FindDealByCompany(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "deal-9", id)
}

func TestFindEntryByDeal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lists/qualification/entries/query", r.URL.Path)
		body := decodeBody(t, r)
		filter := body["filter"].(map[string]interface{})
		assert.Equal(t, "deal-9", filter["constraints"].(map[string]interface{})["value"])
		path := filter["path"].([]interface{})
		assert.Equal(t, []interface{}{"qualification", "parent_record"}, path[0])

		w.Write([]byte(`{"data":[{"id":{"entry_id":"entry-3"}}]}`))
	})

	id, err := c.FindEntryByDeal(context.Background(), "deal-9")
	require.NoError(t, err)
	assert.Equal(t, "entry-3", id)
}

func TestReadHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/lists/qualification/entries/entry-3", r.URL.Path)

		w.Write([]byte(`{"data":{"id":{"entry_id":"entry-3"},"entry_values":{
			"signals_qualified":[{"value":"Bob:\n🔴 Burn\n---\nAlice:\n🟢 Team"}],
			"red_flags_qualified":[{"value":"Bob:\n🔴 Burn\n---\nAlice:"}],
			"status":[{"status":{"title":"Initial screening"}}],
			"tier_5":[{"status":{"title":"Tier 2"}}],
			"tier_1_ok":[{"option":{"title":"Alice"}}],
			"tier_1_ko":[{"option":{"title":"Bob"}}]
		}}}`))
	})

	h, err := c.ReadHistory(context.Background(), "entry-3")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bob", "Alice"}, h.Reviewers())
	assert.Equal(t, []string{"🔴 Burn"}, h.Reviews["Bob"].RedFlags)
	assert.Equal(t, funnel.Tier2, h.Tier)
	assert.Equal(t, funnel.InitialScreening, h.Status)
	assert.True(t, h.Qualified)
	assert.Equal(t, []string{"Alice"}, h.Tier1.OK)
	assert.Equal(t, []string{"Bob"}, h.Tier1.KO)
	assert.Empty(t, h.Tier2.OK)
}

func TestWriteHistory(t *testing.T) {
	var got map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/lists/qualification/entries/entry-3", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		got = decodeBody(t, r)
		w.Write([]byte(`{"data":{}}`))
	})

	h := funnel.NewHistory()
	h.Tier1 = funnel.Ballot{OK: []string{"Alice"}}
	d := funnel.Decide(h, funnel.Evaluation{Reviewer: "Bob", RedFlags: []string{"🔴 Burn"}})

	require.NoError(t, c.WriteHistory(context.Background(), "entry-3", d))

	values := got["data"].(map[string]interface{})["entry_values"].(map[string]interface{})
	assert.Equal(t, []interface{}{map[string]interface{}{"status": "Tier 2"}}, values[FieldTier])
	assert.Equal(t, []interface{}{map[string]interface{}{"option": "Bob"}}, values[FieldTier1KO])
	assert.Equal(t, []interface{}{map[string]interface{}{"option": "Alice"}}, values[FieldTier1OK])
	assert.Equal(t, []interface{}{}, values[FieldTier2OK])
	assert.NotContains(t, values, FieldReason)
}

func TestDo_RetriesOnceOnTransientStatus(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[{"id":{"record_id":"company-1"}}]}`))
	})

	id, err := c.FindCompanyByDomain(context.Background(), "acme.io")
	require.NoError(t, err)
	assert.Equal(t, "company-1", id)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDo_UpstreamErrorAfterRetry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FindCompanyByDomain(context.Background(), "acme.io")
	assert.ErrorIs(t, err, ports.ErrUpstream)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDo_NoRetryOnClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad key"}`))
	})

	err := c.WriteHistory(context.Background(), "entry-3", funnel.Decide(funnel.NewHistory(), funnel.Evaluation{Reviewer: "A"}))
	assert.ErrorIs(t, err, ports.ErrUpstream)
	assert.Contains(t, err.Error(), "bad key")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
