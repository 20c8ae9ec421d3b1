// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_transcribe

import (
	"context"
	"fmt"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
	"github.com/rapidaai/voicenote/pkg/utils"
)

type TranscriberType string

const (
	TranscriberWebsocket TranscriberType = "websocket"
	OptionsKeyEngine     string          = "transcribe.engine"
)

// GetTranscriber resolves the configured transcription engine.
func GetTranscriber(
	ctx context.Context,
	logger commons.Logger,
	options utils.Option,
) (internal_type.Transcriber, error) {
	typ, _ := options.GetString(OptionsKeyEngine)
	switch TranscriberType(typ) {
	case TranscriberWebsocket:
		return NewWebsocketTranscriber(logger, options)
	default:
		return nil, fmt.Errorf("transcribe: unknown engine %q", typ)
	}
}
