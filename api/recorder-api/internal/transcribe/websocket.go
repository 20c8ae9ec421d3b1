// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	internal_audio "github.com/rapidaai/voicenote/api/recorder-api/internal/audio"
	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
	"github.com/rapidaai/voicenote/pkg/utils"
)

const (
	OptionsKeyURL    = "transcribe.url"
	OptionsKeyKey    = "transcribe.key"
	resultBufferSize = 64
)

// wsWord mirrors the engine's word payload.
type wsWord struct {
	Text       string   `json:"text"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// wsResult is one message off the engine socket.
type wsResult struct {
	Type    string   `json:"type,omitempty"`
	Text    string   `json:"text"`
	Words   []wsWord `json:"words,omitempty"`
	IsFinal bool     `json:"is_final"`
}

type wsControl struct {
	Type string `json:"type"`
}

// websocketTranscriber streams LINEAR16 frames to a speech engine over a
// websocket and decodes its interleaved volatile/final results. Writes are
// serialized by a mutex; a single read-loop goroutine owns the inbound side.
type websocketTranscriber struct {
	logger commons.Logger
	url    string
	apiKey string

	mu         sync.Mutex
	connection *websocket.Conn
	results    chan internal_type.TranscriptionResult
	readerDone chan struct{}
}

// NewWebsocketTranscriber builds the engine from options. The endpoint URL is
// mandatory.
func NewWebsocketTranscriber(logger commons.Logger, options utils.Option) (internal_type.Transcriber, error) {
	endpoint, ok := options.GetString(OptionsKeyURL)
	if !ok || utils.IsEmpty(endpoint) {
		return nil, fmt.Errorf("transcribe: illegal engine config, missing %s", OptionsKeyURL)
	}
	apiKey, _ := options.GetString(OptionsKeyKey)
	return &websocketTranscriber{
		logger: logger,
		url:    endpoint,
		apiKey: apiKey,
	}, nil
}

// Name identifies the engine in logs.
func (*websocketTranscriber) Name() string { return "websocket-speech-to-text" }

// RequestAuthorization always grants: a remote engine needs no on-device
// speech permission, only credentials, and those are validated at dial time.
func (t *websocketTranscriber) RequestAuthorization(ctx context.Context) (bool, error) {
	return true, nil
}

// IsAvailable accepts any concrete locale; the engine rejects unsupported
// ones at Start.
func (t *websocketTranscriber) IsAvailable(locale string) bool {
	return !utils.IsEmpty(locale)
}

// EnsureAssets is a no-op for a remote engine; models live server-side.
func (t *websocketTranscriber) EnsureAssets(ctx context.Context, locale string) error {
	return nil
}

func (t *websocketTranscriber) connectionString(locale string) (string, error) {
	u, err := url.Parse(t.url)
	if err != nil {
		return "", fmt.Errorf("transcribe: invalid engine url %q: %w", t.url, err)
	}
	q := u.Query()
	q.Set("locale", locale)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", fmt.Sprintf("%d", internal_audio.DefaultConfig.SampleRate))
	q.Set("channels", fmt.Sprintf("%d", internal_audio.DefaultConfig.Channels))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (t *websocketTranscriber) Start(ctx context.Context, locale string) (<-chan internal_type.TranscriptionResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connection != nil {
		return nil, fmt.Errorf("transcribe: session already streaming")
	}

	connStr, err := t.connectionString(locale)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if !utils.IsEmpty(t.apiKey) {
		header.Set("Authorization", "Token "+t.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, connStr, header)
	if err != nil {
		return nil, fmt.Errorf("transcribe: failed to connect to engine: %w", err)
	}

	t.connection = conn
	t.results = make(chan internal_type.TranscriptionResult, resultBufferSize)
	t.readerDone = make(chan struct{})
	go t.readLoop(ctx, conn, t.results, t.readerDone)

	// A cancelled session must unblock the read loop; Finish closes the
	// socket on the normal path.
	go func(readerDone <-chan struct{}) {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-readerDone:
		}
	}(t.readerDone)
	return t.results, nil
}

// readLoop decodes engine messages into the result channel until the socket
// closes or the session context is cancelled.
func (t *websocketTranscriber) readLoop(ctx context.Context, conn *websocket.Conn, results chan<- internal_type.TranscriptionResult, done chan<- struct{}) {
	defer close(done)
	defer close(results)
	for {
		if ctx.Err() != nil {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.logger.Errorf("transcribe: error reading from engine socket: %v", err)
			}
			return
		}
		var resp wsResult
		if err := json.Unmarshal(msg, &resp); err != nil {
			t.logger.Warnf("transcribe: discarding undecodable engine message: %v", err)
			continue
		}
		if resp.Type != "" && resp.Type != "transcript" {
			continue
		}

		result := internal_type.TranscriptionResult{
			Text:    resp.Text,
			IsFinal: resp.IsFinal,
		}
		for _, w := range resp.Words {
			result.Words = append(result.Words, internal_type.TimestampedWord{
				Text:       w.Text,
				StartTime:  w.Start,
				EndTime:    w.End,
				Confidence: w.Confidence,
			})
		}
		select {
		case results <- result:
		case <-ctx.Done():
			return
		}
	}
}

// Stream sends one PCM frame to the engine.
func (t *websocketTranscriber) Stream(frame internal_type.AudioFrame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connection == nil {
		return fmt.Errorf("transcribe: stream before Start")
	}
	if err := t.connection.WriteMessage(websocket.BinaryMessage, frame.Data); err != nil {
		return fmt.Errorf("transcribe: sending audio frame %d: %w", frame.Seq, err)
	}
	return nil
}

// Finish asks the engine to flush trailing volatile text as a final result,
// waits for the stream to drain, then closes the socket. Always tears the
// connection down, even when the flush handshake fails.
func (t *websocketTranscriber) Finish(ctx context.Context) error {
	t.mu.Lock()
	conn := t.connection
	readerDone := t.readerDone
	t.connection = nil
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	defer conn.Close()

	payload, _ := json.Marshal(wsControl{Type: "finalize"})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("transcribe: sending finalize: %w", err)
	}

	select {
	case <-readerDone:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("transcribe: waiting for engine flush: %w", ctx.Err())
	}
}
