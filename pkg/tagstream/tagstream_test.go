package tagstream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, handler func(w http.ResponseWriter, flush func())) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		handler(w, flusher.Flush)
	}))
}

func writeEvent(w http.ResponseWriter, event, data string) {
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func TestStreamTagsUpdatesThenComplete(t *testing.T) {
	server := sseServer(t, func(w http.ResponseWriter, flush func()) {
		writeEvent(w, "tags_update", `{"tags":[{"name":"vip","count":3}]}`)
		flush()
		writeEvent(w, "tags_update", `{"tags":[{"name":"vip","count":3},{"name":"lead","count":8}]}`)
		flush()
		writeEvent(w, "tags_complete", `{"tags":[{"name":"vip","count":3},{"name":"lead","count":8}]}`)
		flush()
	})
	defer server.Close()

	consumer := NewConsumer(server.URL, nil, slog.Default())

	updates := make(chan []Tag, 8)
	done := make(chan []Tag, 1)

	var completions, failures atomic.Int32

	_, err := consumer.StreamTags(context.Background(), Callbacks{
		OnUpdate: func(tags []Tag) { updates <- tags },
		OnComplete: func(tags []Tag) {
			completions.Add(1)
			done <- tags
		},
		OnError: func(_ *StreamError) { failures.Add(1) },
	})
	require.NoError(t, err)

	select {
	case final := <-done:
		require.Len(t, final, 2)
		assert.Equal(t, Tag{Name: "lead", Count: 8}, final[1])
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not complete")
	}

	require.Len(t, updates, 2)
	first := <-updates
	assert.Equal(t, []Tag{{Name: "vip", Count: 3}}, first)

	assert.Equal(t, int32(1), completions.Load())
	assert.Equal(t, int32(0), failures.Load())
}

func TestStreamTagsErrorEvent(t *testing.T) {
	server := sseServer(t, func(w http.ResponseWriter, flush func()) {
		writeEvent(w, "tags_error", `{"code":"not_configured","message":"chatwoot is not connected"}`)
		flush()
	})
	defer server.Close()

	consumer := NewConsumer(server.URL, nil, slog.Default())

	errs := make(chan *StreamError, 1)

	_, err := consumer.StreamTags(context.Background(), Callbacks{
		OnError: func(streamErr *StreamError) { errs <- streamErr },
	})
	require.NoError(t, err)

	select {
	case streamErr := <-errs:
		assert.Equal(t, ErrorNotConfigured, streamErr.Class)
		assert.Equal(t, "chatwoot is not connected", streamErr.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("error event was not delivered")
	}
}

func TestStreamTagsConnectionLost(t *testing.T) {
	server := sseServer(t, func(w http.ResponseWriter, flush func()) {
		writeEvent(w, "tags_update", `{"tags":[{"name":"vip","count":1}]}`)
		flush()
		// Drop the connection without a terminal event.
	})
	defer server.Close()

	consumer := NewConsumer(server.URL, nil, slog.Default())

	errs := make(chan *StreamError, 1)

	var completions atomic.Int32

	_, err := consumer.StreamTags(context.Background(), Callbacks{
		OnComplete: func(_ []Tag) { completions.Add(1) },
		OnError:    func(streamErr *StreamError) { errs <- streamErr },
	})
	require.NoError(t, err)

	select {
	case streamErr := <-errs:
		assert.Equal(t, ErrorConnectionLost, streamErr.Class)
	case <-time.After(2 * time.Second):
		t.Fatal("lost connection was not reported")
	}

	assert.Equal(t, int32(0), completions.Load())
}

func TestStreamTagsCancelSuppressesCallbacks(t *testing.T) {
	release := make(chan struct{})

	server := sseServer(t, func(w http.ResponseWriter, flush func()) {
		writeEvent(w, "tags_update", `{"tags":[{"name":"vip","count":1}]}`)
		flush()
		<-release
	})
	defer server.Close()
	defer close(release)

	consumer := NewConsumer(server.URL, nil, slog.Default())

	updates := make(chan []Tag, 1)

	var terminals atomic.Int32

	handle, err := consumer.StreamTags(context.Background(), Callbacks{
		OnUpdate:   func(tags []Tag) { updates <- tags },
		OnComplete: func(_ []Tag) { terminals.Add(1) },
		OnError:    func(_ *StreamError) { terminals.Add(1) },
	})
	require.NoError(t, err)

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("first update never arrived")
	}

	handle.Cancel()

	// The aborted read must not surface as a terminal callback.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), terminals.Load())

	// Cancel is idempotent.
	handle.Cancel()
}

func TestStreamTagsNotConfiguredStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	consumer := NewConsumer(server.URL, nil, slog.Default())

	_, err := consumer.StreamTags(context.Background(), Callbacks{})
	require.Error(t, err)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, ErrorNotConfigured, streamErr.Class)
}

func TestStreamTagsUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	consumer := NewConsumer(server.URL, nil, slog.Default())

	_, err := consumer.StreamTags(context.Background(), Callbacks{})
	require.Error(t, err)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, ErrorOther, streamErr.Class)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		data string
		want ErrorClass
	}{
		{"not configured", `{"code":"not_configured","message":"x"}`, ErrorNotConfigured},
		{"long form", `{"code":"integration_not_configured","message":"x"}`, ErrorNotConfigured},
		{"connection lost", `{"code":"connection_lost","message":"x"}`, ErrorConnectionLost},
		{"unknown code", `{"code":"weird","message":"x"}`, ErrorOther},
		{"garbage payload", `not json`, ErrorOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.data).Class)
		})
	}
}
