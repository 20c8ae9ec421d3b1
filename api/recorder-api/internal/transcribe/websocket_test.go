// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_transcribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
	"github.com/rapidaai/voicenote/pkg/utils"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-transcribe"),
		commons.Level("debug"),
	)
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

// fakeEngine is a websocket speech engine: echoes a volatile result per audio
// frame, flushes a final and closes on the finalize control message.
func fakeEngine(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "linear16", r.URL.Query().Get("encoding"))
		assert.Equal(t, "en-US", r.URL.Query().Get("locale"))
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		frames := 0
		for {
			kind, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			switch kind {
			case websocket.BinaryMessage:
				frames++
				payload, _ := json.Marshal(wsResult{
					Type:    "transcript",
					Text:    "hello wor",
					IsFinal: false,
				})
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case websocket.TextMessage:
				var ctl wsControl
				require.NoError(t, json.Unmarshal(msg, &ctl))
				if ctl.Type != "finalize" {
					continue
				}
				conf := 0.92
				payload, _ := json.Marshal(wsResult{
					Type: "transcript",
					Text: "hello world",
					Words: []wsWord{
						{Text: "hello", Start: 0.0, End: 0.5, Confidence: &conf},
						{Text: "world", Start: 0.5, End: 1.0},
					},
					IsFinal: true,
				})
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}))
}

func newEngineUnderTest(t *testing.T, serverURL string) internal_type.Transcriber {
	t.Helper()
	engine, err := NewWebsocketTranscriber(newTestLogger(t), utils.Option{
		OptionsKeyURL: "ws" + strings.TrimPrefix(serverURL, "http"),
		OptionsKeyKey: "secret",
	})
	require.NoError(t, err)
	return engine
}

func TestNewWebsocketTranscriber_MissingURL(t *testing.T) {
	_, err := NewWebsocketTranscriber(newTestLogger(t), utils.Option{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal engine config")
}

func TestWebsocketTranscriber_IsAvailable(t *testing.T) {
	engine, err := NewWebsocketTranscriber(newTestLogger(t), utils.Option{OptionsKeyURL: "ws://engine"})
	require.NoError(t, err)

	assert.True(t, engine.IsAvailable("en-US"))
	assert.False(t, engine.IsAvailable("  "))
}

func TestWebsocketTranscriber_StreamAndFinishRoundTrip(t *testing.T) {
	server := fakeEngine(t)
	defer server.Close()

	engine := newEngineUnderTest(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	granted, err := engine.RequestAuthorization(ctx)
	require.NoError(t, err)
	require.True(t, granted)
	require.NoError(t, engine.EnsureAssets(ctx, "en-US"))

	results, err := engine.Start(ctx, "en-US")
	require.NoError(t, err)

	require.NoError(t, engine.Stream(internal_type.AudioFrame{Seq: 0, Data: make([]byte, 640)}))
	require.NoError(t, engine.Stream(internal_type.AudioFrame{Seq: 1, Data: make([]byte, 640)}))

	var mu sync.Mutex
	var collected []internal_type.TranscriptionResult
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			mu.Lock()
			collected = append(collected, r)
			mu.Unlock()
		}
	}()

	// Two volatile echoes arrive before the flush.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(collected) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, engine.Finish(ctx))
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, collected, 3)
	assert.False(t, collected[0].IsFinal)
	assert.Equal(t, "hello wor", collected[0].Text)

	final := collected[2]
	require.True(t, final.IsFinal)
	assert.Equal(t, "hello world", final.Text)
	require.Len(t, final.Words, 2)
	assert.Equal(t, "hello", final.Words[0].Text)
	assert.Equal(t, 0.5, final.Words[0].EndTime)
	require.NotNil(t, final.Words[0].Confidence)
	assert.InDelta(t, 0.92, *final.Words[0].Confidence, 1e-9)
	assert.Nil(t, final.Words[1].Confidence)
}

func TestWebsocketTranscriber_StreamBeforeStart(t *testing.T) {
	engine, err := NewWebsocketTranscriber(newTestLogger(t), utils.Option{OptionsKeyURL: "ws://engine"})
	require.NoError(t, err)

	err = engine.Stream(internal_type.AudioFrame{Data: []byte{0, 0}})
	assert.Error(t, err)
}

func TestWebsocketTranscriber_FinishWithoutStartIsNoop(t *testing.T) {
	engine, err := NewWebsocketTranscriber(newTestLogger(t), utils.Option{OptionsKeyURL: "ws://engine"})
	require.NoError(t, err)

	assert.NoError(t, engine.Finish(context.Background()))
}
