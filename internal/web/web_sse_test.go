package web_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSSE_EndpointHeaders verifies the SSE endpoint returns correct headers
func TestSSE_EndpointHeaders(t *testing.T) {
	ts := newWebTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)

	// Use a context with timeout since SSE is a long-running connection
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rr.Header().Get("Connection"))
	assert.Equal(t, "no", rr.Header().Get("X-Accel-Buffering"))
}

// TestSSE_InitialEvents verifies the SSE endpoint sends retry and connected events
func TestSSE_InitialEvents(t *testing.T) {
	ts := newWebTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	body := rr.Body.String()
	assert.Contains(t, body, "retry: 3000", "Expected retry header in SSE response")
	assert.Contains(t, body, "event: connected", "Expected connected event in SSE response")
	assert.Contains(t, body, `data: {"status":"connected"}`, "Expected connected event data")
}

// TestSSE_ClosedHubRefusesStream verifies no stream is opened once the hub has shut down
func TestSSE_ClosedHubRefusesStream(t *testing.T) {
	ts := newWebTestServer(t)
	ts.app.Hub.Close()

	rr := ts.get("/events")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotEqual(t, "text/event-stream", rr.Header().Get("Content-Type"))
}

// TestSSE_RegistrationBroadcast verifies a saved registration reaches connected browsers
func TestSSE_RegistrationBroadcast(t *testing.T) {
	ts := newWebTestServer(t)

	server := httptest.NewServer(ts.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	readUntil(t, reader, "event: connected")

	require.Eventually(t, func() bool { return ts.app.Hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// Register through a separate browser session on the same app
	ts.get("/")
	ts.submitIdentity("Dana", "Levi", "dana@huji.ac.il")
	rr := ts.post("/register/save", credentialsForm())
	require.Equal(t, http.StatusSeeOther, rr.Code)

	update := readUntil(t, reader, "event: roster-update")
	assert.Contains(t, update, "dana@huji.ac.il")

	added := readUntil(t, reader, "event: registrant-added")
	assert.Contains(t, added, `"last_name":"Levi"`)
	assert.Contains(t, added, `"roster_count":1`)
}

// readUntil reads SSE frames until one starts with prefix and returns that frame
func readUntil(t *testing.T, reader *bufio.Reader, prefix string) string {
	t.Helper()
	for {
		frame, err := readFrame(reader)
		require.NoError(t, err, "stream ended before %q", prefix)
		if strings.HasPrefix(frame, prefix) {
			return frame
		}
	}
}

// readFrame reads lines up to the blank line that ends an SSE frame
func readFrame(reader *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return b.String(), err
		}
		if line == "\n" {
			if b.Len() == 0 {
				continue
			}
			return b.String(), nil
		}
		b.WriteString(line)
	}
}

// TestTableFragment verifies the fragment endpoint renders only the table
func TestTableFragment(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/registrants/table")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<html")
	assert.Contains(t, rr.Body.String(), "No users registered yet.")

	ts.register("Dana", "Levi", "dana@huji.ac.il")
	doc := parseHTML(ts.get("/registrants/table").Body)
	assertContainsElement(t, doc, "table.table #userList tr")
}
