package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// Event names on the roster stream
const (
	EventConnected       = "connected"
	EventRosterUpdate    = "roster-update"
	EventRegistrantAdded = "registrant-added"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool
	var count int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream live roster updates",
		Long: `Connect to the server's SSE endpoint and print roster changes as they happen.

Events include:
  - registrant-added: a user was registered (JSON summary)
  - roster-update: the rendered registrant table (shown with --verbose)

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, cmd.OutOrStdout(), jsonOutput || cfg.Output == "json", count)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many registrant-added events (0 streams until interrupted)")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

// RegistrantAdded is the payload of a registrant-added event
type RegistrantAdded struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Position    int    `json:"position"`
	RosterCount int    `json:"roster_count"`
}

func streamEvents(ctx context.Context, w io.Writer, jsonOutput bool, count int) error {
	// SSE is on the web router, not the API router
	url := strings.TrimSuffix(cfg.ServerURL, "/") + "/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout for SSE
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	added := 0
	err = readEvents(resp.Body, func(event, data string) bool {
		printEvent(w, event, data, jsonOutput)
		if event == EventRegistrantAdded {
			added++
		}
		return count == 0 || added < count
	})

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	if !jsonOutput {
		_, _ = fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

// readEvents parses an SSE stream, calling handle for each complete event
// until it returns false or the stream ends
func readEvents(r io.Reader, handle func(event, data string) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			// End of event
			if currentEvent != "" {
				if !handle(currentEvent, strings.Join(dataLines, "\n")) {
					return nil
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}
	return scanner.Err()
}

func printEvent(w io.Writer, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		jsonData, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: data})
		_, _ = fmt.Fprintln(w, string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	switch event {
	case EventConnected:
		_, _ = fmt.Fprintf(w, "Connected to %s\n", cfg.ServerURL)
	case EventRegistrantAdded:
		var p RegistrantAdded
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, event, data)
			return
		}
		_, _ = fmt.Fprintf(w, "[%s] registered %s %s <%s> (%d of %d)\n",
			timestamp, p.FirstName, p.LastName, p.Email, p.Position+1, p.RosterCount)
	case EventRosterUpdate:
		if !cfg.Verbose {
			return
		}
		fallthrough
	default:
		// Truncate data if it's too long for display
		displayData := strings.ReplaceAll(data, "\n", " ")
		if len(displayData) > 100 {
			displayData = displayData[:100] + "..."
		}
		_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, event, displayData)
	}
}
