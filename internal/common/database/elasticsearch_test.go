package database

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointment-workers/internal/common/config"
)

type bulkCall struct {
	path  string
	lines []string
}

func newFakeES(t *testing.T, status int, response string) (*ElasticsearchClient, *[]bulkCall) {
	var (
		mu    sync.Mutex
		calls []bulkCall
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lines []string
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		mu.Lock()
		calls = append(calls, bulkCall{path: r.URL.Path, lines: lines})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client, &calls
}

func TestNewElasticsearch_NoAddresses(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	assert.EqualError(t, err, "elasticsearch addresses are empty")
}

func TestBulkIndex(t *testing.T) {
	client, calls := newFakeES(t, http.StatusOK, `{
		"errors": true,
		"items": [
			{"index": {"_id": "a", "status": 201}},
			{"index": {"_id": "b", "status": 200}},
			{"index": {"_id": "c", "status": 400, "error": {"type": "mapper_parsing_exception"}}}
		]
	}`)

	docs := []BulkDocument{
		{ID: "a", Source: map[string]string{"title": "굿리치 - GP 오픈 예정"}},
		{ID: "b", Source: map[string]string{"title": "위촉 삼성생명"}},
		{ID: "c", Source: map[string]string{"title": "bad"}},
	}
	res, err := client.BulkIndex(context.Background(), "calendar-events", docs)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Indexed)
	assert.Equal(t, []string{"c"}, res.Failed)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.True(t, strings.HasSuffix(call.path, "/_bulk"))
	require.Len(t, call.lines, 6)

	var action map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(call.lines[0]), &action))
	assert.Equal(t, "calendar-events", action["index"]["_index"])
	assert.Equal(t, "a", action["index"]["_id"])
	assert.Contains(t, call.lines[1], "GP 오픈 예정")
}

func TestBulkIndex_Empty(t *testing.T) {
	client, calls := newFakeES(t, http.StatusOK, `{}`)

	res, err := client.BulkIndex(context.Background(), "calendar-events", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Indexed)
	assert.Empty(t, *calls)
}

func TestBulkIndex_RequestError(t *testing.T) {
	client, _ := newFakeES(t, http.StatusServiceUnavailable, `{"error":"unavailable"}`)

	_, err := client.BulkIndex(context.Background(), "calendar-events", []BulkDocument{{ID: "a", Source: map[string]string{}}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
