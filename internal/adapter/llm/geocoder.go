package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
)

// chatCompleter is the slice of the OpenAI client the geocoder needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Geocoder implements domain.Geocoder by asking a chat model for
// coordinates or address parts and parsing its JSON answer.
type Geocoder struct {
	client  chatCompleter
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeocoder creates an LLM-backed geocoder. An empty baseURL uses the
// default OpenAI endpoint; set it to point at a compatible proxy.
func NewGeocoder(apiKey, baseURL, model string, timeout time.Duration, logger *slog.Logger) *Geocoder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Geocoder{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// ForwardGeocode converts a free-form location description to coordinates.
func (g *Geocoder) ForwardGeocode(ctx context.Context, query string) (domain.GeocodeResult, error) {
	prompt := fmt.Sprintf(
		"Convert this location to GPS coordinates: %s. Return ONLY a JSON object with latitude and longitude as numbers, nothing else.",
		query,
	)

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("forward geocode: %w", err)
	}

	var result domain.GeocodeResult
	lat, lon := gjson.Get(raw, "latitude"), gjson.Get(raw, "longitude")
	// Only a complete coordinate pair is usable.
	if lat.Type == gjson.Number && lon.Type == gjson.Number {
		latV, lonV := lat.Float(), lon.Float()
		result.Latitude = &latV
		result.Longitude = &lonV
	} else {
		g.logger.Debug("model answer had no coordinate pair", "query", query)
	}
	return result, nil
}

// ReverseGeocode converts coordinates to address parts.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodeResult, error) {
	prompt := fmt.Sprintf(
		"What address is at GPS coordinates %.6f, %.6f? Return ONLY a JSON object with address, city, state and country as strings, nothing else.",
		lat, lon,
	)

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("reverse geocode: %w", err)
	}

	return domain.GeocodeResult{
		Address: gjson.Get(raw, "address").String(),
		City:    gjson.Get(raw, "city").String(),
		State:   gjson.Get(raw, "state").String(),
		Country: gjson.Get(raw, "country").String(),
	}, nil
}

// complete sends one user prompt in JSON mode and returns the raw answer.
func (g *Geocoder) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
