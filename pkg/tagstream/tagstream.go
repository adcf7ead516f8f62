// Package tagstream consumes the Chatwoot tag export stream. The service
// pushes incremental tag counts over server-sent events; the consumer relays
// cumulative updates to the caller and guarantees exactly one terminal
// notification, completion or error, never both.
package tagstream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// Event names on the wire.
const (
	eventTagsUpdate   = "tags_update"
	eventTagsComplete = "tags_complete"
	eventTagsError    = "tags_error"
)

// ErrorClass buckets stream failures so callers can show a distinct
// remediation message per class.
type ErrorClass string

const (
	ErrorNotConfigured  ErrorClass = "integration_not_configured"
	ErrorConnectionLost ErrorClass = "connection_lost"
	ErrorOther          ErrorClass = "other"
)

// Tag is one cumulative entry in a tags_update event.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// StreamError is the terminal failure delivered to OnError.
type StreamError struct {
	Class   ErrorClass
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("tag stream failed (%s): %s", e.Class, e.Message)
}

// Callbacks receive stream progress. OnUpdate fires zero or more times with
// the cumulative tag list; then exactly one of OnComplete or OnError fires.
// A cancelled stream fires neither.
type Callbacks struct {
	OnUpdate   func(tags []Tag)
	OnComplete func(tags []Tag)
	OnError    func(err *StreamError)
}

// Handle controls a live stream.
type Handle struct {
	cancel context.CancelFunc

	mu        sync.Mutex
	terminal  bool
	cancelled bool
}

// Cancel closes the underlying connection and suppresses any further
// callback delivery. Safe to call more than once and after completion.
func (h *Handle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()

	h.cancel()
}

// claim reserves the right to deliver a callback. It returns false once the
// stream is cancelled or, for terminal events, already terminated.
func (h *Handle) claim(terminal bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancelled || h.terminal {
		return false
	}

	if terminal {
		h.terminal = true
	}

	return true
}

// Consumer opens tag export streams against the campaign service.
type Consumer struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewConsumer creates a tag stream consumer. The client must not enforce an
// overall request timeout; streams are long-lived and are ended by the
// server or by Cancel.
func NewConsumer(baseURL string, httpClient *http.Client, logger *slog.Logger) *Consumer {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Consumer{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With("module", "tagstream"),
	}
}

// StreamTags opens the stream and starts relaying events. The returned
// handle's Cancel closes the connection; after Cancel no callback is
// delivered.
func (c *Consumer) StreamTags(ctx context.Context, callbacks Callbacks) (*Handle, error) {
	ctx, cancel := context.WithCancel(ctx)
	handle := &Handle{cancel: cancel}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/integrations/chatwoot/tags/stream", nil)
	if err != nil {
		cancel()

		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()

		return nil, fmt.Errorf("failed to open tag stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		cancel()

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusPreconditionFailed {
			return nil, &StreamError{Class: ErrorNotConfigured, Message: "chatwoot integration is not configured"}
		}

		return nil, &StreamError{Class: ErrorOther, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	go c.consume(resp.Body, handle, callbacks)

	return handle, nil
}

func (c *Consumer) consume(body io.ReadCloser, handle *Handle, callbacks Callbacks) {
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event, data string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if event != "" {
				if done := c.dispatch(event, data, handle, callbacks); done {
					return
				}
			}

			event, data = "", ""
		}
	}

	// The server ended the stream without a terminal event. A cancelled
	// handle also lands here when the closed connection aborts the read.
	if handle.claim(true) {
		c.deliverError(callbacks, &StreamError{
			Class:   ErrorConnectionLost,
			Message: "tag stream connection lost",
		})
	}
}

// dispatch relays one event. Returns true when the event was terminal.
func (c *Consumer) dispatch(event, data string, handle *Handle, callbacks Callbacks) bool {
	switch event {
	case eventTagsUpdate:
		if !handle.claim(false) {
			return true
		}

		if callbacks.OnUpdate != nil {
			callbacks.OnUpdate(parseTags(data))
		}

		return false

	case eventTagsComplete:
		if handle.claim(true) && callbacks.OnComplete != nil {
			callbacks.OnComplete(parseTags(data))
		}

		return true

	case eventTagsError:
		if handle.claim(true) {
			c.deliverError(callbacks, classify(data))
		}

		return true

	default:
		c.logger.Debug("Ignoring unknown stream event", "event", event)

		return false
	}
}

func (c *Consumer) deliverError(callbacks Callbacks, streamErr *StreamError) {
	c.logger.Warn("Tag stream terminated with error", "class", streamErr.Class, "message", streamErr.Message)

	if callbacks.OnError != nil {
		callbacks.OnError(streamErr)
	}
}

func parseTags(data string) []Tag {
	if data == "" {
		return nil
	}

	var payload struct {
		Tags []Tag `json:"tags"`
	}

	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil
	}

	return payload.Tags
}

// classify maps a tags_error payload onto an error class.
func classify(data string) *StreamError {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}

	_ = json.Unmarshal([]byte(data), &payload)

	message := payload.Message
	if message == "" {
		message = "tag stream failed"
	}

	switch payload.Code {
	case "not_configured", "integration_not_configured":
		return &StreamError{Class: ErrorNotConfigured, Message: message}
	case "connection_lost":
		return &StreamError{Class: ErrorConnectionLost, Message: message}
	default:
		return &StreamError{Class: ErrorOther, Message: message}
	}
}
