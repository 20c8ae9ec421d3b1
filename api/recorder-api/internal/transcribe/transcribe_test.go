// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_transcribe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidaai/voicenote/pkg/utils"
)

func TestGetTranscriber_ResolvesWebsocketEngine(t *testing.T) {
	transcriber, err := GetTranscriber(context.Background(), newTestLogger(t), utils.Option{
		OptionsKeyEngine: string(TranscriberWebsocket),
		OptionsKeyURL:    "ws://localhost:9000/stt",
	})
	require.NoError(t, err)
	require.NotNil(t, transcriber)
	assert.True(t, transcriber.IsAvailable("en-US"))
}

func TestGetTranscriber_RejectsUnknownEngine(t *testing.T) {
	tests := []string{"", "grpc", "on-device"}
	for _, engine := range tests {
		t.Run("engine="+engine, func(t *testing.T) {
			_, err := GetTranscriber(context.Background(), newTestLogger(t), utils.Option{
				OptionsKeyEngine: engine,
				OptionsKeyURL:    "ws://localhost:9000/stt",
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unknown engine")
		})
	}
}

func TestDisabledTranscriber_DegradesLikeADenial(t *testing.T) {
	transcriber := NewDisabledTranscriber()

	granted, err := transcriber.RequestAuthorization(context.Background())
	require.NoError(t, err)
	assert.False(t, granted)
	assert.False(t, transcriber.IsAvailable("en-US"))

	_, err = transcriber.Start(context.Background(), "en-US")
	require.Error(t, err)
	require.NoError(t, transcriber.Finish(context.Background()))
}
