// Server-sent-events client for the backend's push channels
package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultRetryWait is the pause between reconnect attempts, matching the
// browser EventSource default.
const DefaultRetryWait = 3 * time.Second

// StreamCallbacks receives stream lifecycle and message events.
//
// Callbacks are invoked from the stream's reader goroutine; handlers
// must do their own synchronization. Nil callbacks are skipped.
type StreamCallbacks struct {
	// OnOpen fires each time a connection is established, including reconnects.
	OnOpen func()

	// OnMessage fires once per SSE message with the joined data payload.
	OnMessage func(data []byte)

	// OnDisconnect fires when a connection drops before reconnection begins.
	OnDisconnect func(err error)
}

// Stream is one auto-reconnecting server-sent-events subscription.
//
// The stream owns all retry behavior: consumers never reconnect
// themselves, they only observe OnOpen/OnDisconnect transitions. A
// closed stream never delivers another callback.
type Stream struct {
	url        string
	authHeader string
	client     *http.Client
	retryWait  time.Duration
	callbacks  StreamCallbacks

	cancel context.CancelFunc
	done   chan struct{}
}

// StreamOpts configures optional stream behavior.
type StreamOpts struct {
	Client     *http.Client  // defaults to http.DefaultClient
	AuthHeader string        // Authorization header value, "" to omit
	RetryWait  time.Duration // defaults to DefaultRetryWait
}

// OpenStream connects to url and begins delivering events. The stream
// reconnects after transport errors until ctx is cancelled or Close is
// called.
func OpenStream(ctx context.Context, url string, opts StreamOpts, cb StreamCallbacks) *Stream {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = DefaultRetryWait
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		url:        url,
		authHeader: opts.AuthHeader,
		client:     opts.Client,
		retryWait:  opts.RetryWait,
		callbacks:  cb,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go s.run(ctx)
	return s
}

// Close terminates the stream and waits for the reader goroutine to
// exit. After Close returns no callback will fire. Safe to call
// multiple times.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

// URL returns the stream's endpoint.
func (s *Stream) URL() string { return s.url }

// run is the connect/read/retry loop.
func (s *Stream) run(ctx context.Context) {
	defer close(s.done)

	for {
		err := s.connectOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		if s.callbacks.OnDisconnect != nil {
			s.callbacks.OnDisconnect(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryWait):
		}
	}
}

// connectOnce establishes a single connection and reads events until
// the connection fails or ctx is cancelled.
func (s *Stream) connectOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if s.authHeader != "" {
		req.Header.Set("Authorization", s.authHeader)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("stream connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream rejected with status %d", resp.StatusCode)
	}

	if s.callbacks.OnOpen != nil {
		s.callbacks.OnOpen()
	}

	return s.readEvents(ctx, bufio.NewReader(resp.Body))
}

// readEvents parses the text/event-stream wire format: "data:" lines
// accumulate until a blank line terminates the event. Comment lines
// (leading ":") and non-data fields are skipped.
func (s *Stream) readEvents(ctx context.Context, r *bufio.Reader) error {
	var data bytes.Buffer

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return fmt.Errorf("stream read failed: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if data.Len() > 0 {
				payload := append([]byte(nil), data.Bytes()...)
				data.Reset()
				if s.callbacks.OnMessage != nil {
					s.callbacks.OnMessage(payload)
				}
			}
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// event/id/retry fields are not used by the backend
		}
	}
}
