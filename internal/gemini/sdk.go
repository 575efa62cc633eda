// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// SDKClient implements Generator on top of the official genai SDK.
type SDKClient struct {
	client *genai.Client
	model  string
}

// NewSDKClient creates a genai client for the Gemini API backend.
func NewSDKClient(ctx context.Context, apiKey, model, baseURL string) (*SDKClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" && baseURL != DefaultBaseURL {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return &SDKClient{client: client, model: model}, nil
}

// Generate implements Generator.
func (c *SDKClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &GenerationError{Backend: BackendSDK, Err: err}
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &GenerationError{Backend: BackendSDK, Err: ErrEmptyCandidates}
	}
	return resp.Text(), nil
}
