package gmail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// fakeGmail serves the handful of Gmail REST endpoints the client uses.
type fakeGmail struct {
	mu        sync.Mutex
	pages     [][]string // thread IDs per page
	subjects  map[string]string
	modified  map[string]*gmail.ModifyThreadRequest
	failModFn func(id string) bool
	listQuery []string
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/gmail/v1/users/me/")
	switch {
	case r.Method == http.MethodGet && path == "threads":
		f.listQuery = append(f.listQuery, r.URL.RawQuery)
		page := 0
		if tok := r.URL.Query().Get("pageToken"); tok != "" {
			page = int(tok[0] - '0')
		}
		res := &gmail.ListThreadsResponse{}
		if page < len(f.pages) {
			for _, id := range f.pages[page] {
				res.Threads = append(res.Threads, &gmail.Thread{Id: id})
			}
		}
		if page+1 < len(f.pages) {
			res.NextPageToken = string(rune('0' + page + 1))
		}
		_ = json.NewEncoder(w).Encode(res)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "messages/"):
		id := strings.TrimPrefix(path, "messages/")
		subject, ok := f.subjects[id]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"Not Found"}}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(&gmail.Message{
			Id: id,
			Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "bot@beeminder.com"},
				{Name: "Subject", Value: subject},
			}},
		})

	case r.Method == http.MethodPost && strings.HasPrefix(path, "threads/") && strings.HasSuffix(path, "/modify"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "threads/"), "/modify")
		if f.failModFn != nil && f.failModFn(id) {
			http.Error(w, `{"error":{"code":500,"message":"backend"}}`, http.StatusInternalServerError)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req gmail.ModifyThreadRequest
		_ = json.Unmarshal(body, &req)
		f.modified[id] = &req
		_ = json.NewEncoder(w).Encode(&gmail.Thread{Id: id})

	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, f *fakeGmail) *Client {
	t.Helper()
	if f.modified == nil {
		f.modified = map[string]*gmail.ModifyThreadRequest{}
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := newClient(context.Background(), []option.ClientOption{
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL + "/"),
	})
	require.NoError(t, err)
	return c
}

func TestInboxThreadIDs_Paging(t *testing.T) {
	f := &fakeGmail{pages: [][]string{{"t1", "t2"}, {"t3"}}}
	c := newTestClient(t, f)

	ids, err := c.InboxThreadIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids)

	require.Len(t, f.listQuery, 2)
	assert.Contains(t, f.listQuery[0], "labelIds=INBOX")
}

func TestInboxThreadIDs_Empty(t *testing.T) {
	c := newTestClient(t, &fakeGmail{})

	ids, err := c.InboxThreadIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMessageHeaders(t *testing.T) {
	f := &fakeGmail{subjects: map[string]string{"t1": "alice/weight on 01/15 (+1) respond with beeminder data"}}
	c := newTestClient(t, f)

	headers, err := c.MessageHeaders(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, headers, 2)
	assert.Equal(t, "Subject", headers[1].Name)

	_, err = c.MessageHeaders(context.Background(), "missing")
	assert.Error(t, err)
}

func TestArchiveAndUnarchiveThread(t *testing.T) {
	f := &fakeGmail{}
	c := newTestClient(t, f)

	require.NoError(t, c.ArchiveThread(context.Background(), "t1"))
	assert.Equal(t, []string{InboxLabel}, f.modified["t1"].RemoveLabelIds)
	assert.Empty(t, f.modified["t1"].AddLabelIds)

	require.NoError(t, c.UnarchiveThread(context.Background(), "t1"))
	assert.Equal(t, []string{InboxLabel}, f.modified["t1"].AddLabelIds)
}

func TestArchiveThreads_AttemptsAll(t *testing.T) {
	f := &fakeGmail{failModFn: func(id string) bool { return id == "t2" }}
	c := newTestClient(t, f)

	err := c.ArchiveThreads(context.Background(), []string{"t1", "t2", "t3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "t2")

	assert.Contains(t, f.modified, "t1")
	assert.Contains(t, f.modified, "t3")
	assert.NotContains(t, f.modified, "t2")
}

func TestArchiveThreads_Empty(t *testing.T) {
	c := newTestClient(t, &fakeGmail{})
	assert.NoError(t, c.ArchiveThreads(context.Background(), nil))
}

func TestAccountDefault(t *testing.T) {
	c := newTestClient(t, &fakeGmail{})
	assert.Equal(t, "default", c.Account())
}

func TestUnarchiveThreads(t *testing.T) {
	f := &fakeGmail{failModFn: func(id string) bool { return id == "t1" }}
	c := newTestClient(t, f)

	err := c.UnarchiveThreads(context.Background(), []string{"t1", "t2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unarchiving thread t1")
	assert.Equal(t, []string{InboxLabel}, f.modified["t2"].AddLabelIds)
}
