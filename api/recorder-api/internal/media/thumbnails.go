// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_media

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rapidaai/voicenote/pkg/commons"
)

// ThumbnailClient fetches scaled thumbnails from the asset service. Fetches
// run off the session's hot path; latency here never blocks transcript or
// timer updates.
type ThumbnailClient struct {
	logger commons.Logger
	client *resty.Client
}

func NewThumbnailClient(logger commons.Logger, baseURL string) *ThumbnailClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2)
	return &ThumbnailClient{logger: logger, client: client}
}

// Fetch returns the thumbnail bytes for an asset at the given square size.
func (t *ThumbnailClient) Fetch(ctx context.Context, assetIdentifier string, size int) ([]byte, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParam("asset", assetIdentifier).
		SetQueryParam("size", fmt.Sprintf("%d", size)).
		Get("/v1/thumbnails")
	if err != nil {
		return nil, fmt.Errorf("thumbnail fetch for %s: %w", assetIdentifier, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("thumbnail fetch for %s: status %d", assetIdentifier, resp.StatusCode())
	}
	return resp.Body(), nil
}
