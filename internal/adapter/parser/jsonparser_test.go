package parser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParser_Parse_Success(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parser := NewJSONParser(logger)

	jsonData := `
	{
		"items": [
			{
				"id": "9f4c3b8e-3c1a-4d6e-9a51-0d4a6b3e2f10",
				"description": "a description",
				"location": "a location",
				"image": "https://example.com/1.png"
			},
			{
				"id": "1d3e8f0b-7a2c-4b9d-8e6f-5c4a3b2d1e0f",
				"image": "https://example.com/2.png"
			}
		]
	}`

	items, err := parser.Parse(context.Background(), []byte(jsonData))

	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, uuid.MustParse("9f4c3b8e-3c1a-4d6e-9a51-0d4a6b3e2f10"), items[0].ID)
	require.NotNil(t, items[0].Description)
	assert.Equal(t, "a description", *items[0].Description)
	require.NotNil(t, items[0].Location)
	assert.Equal(t, "a location", *items[0].Location)
	assert.Equal(t, "https://example.com/1.png", items[0].ImageURL)

	assert.Equal(t, uuid.MustParse("1d3e8f0b-7a2c-4b9d-8e6f-5c4a3b2d1e0f"), items[1].ID)
	assert.Nil(t, items[1].Description)
	assert.Nil(t, items[1].Location)
	assert.Equal(t, "https://example.com/2.png", items[1].ImageURL)
}

func TestJSONParser_Parse_EmptyItems(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parser := NewJSONParser(logger)

	items, err := parser.Parse(context.Background(), []byte(`{"items": []}`))

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestJSONParser_Parse_InvalidPayloads(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parser := NewJSONParser(logger)

	payloads := map[string]string{
		"not json":         `invalid json`,
		"empty body":       ``,
		"missing items":    `{"feed": []}`,
		"items not list":   `{"items": {}}`,
		"top level list":   `[]`,
		"top level string": `"x"`,
		"top level null":   `null`,
		"trailing data":    `{"items": []} this is not json`,
		"two objects":      `{"items": []}{"items": []}`,
		"bad id":           `{"items": [{"id": "nope", "image": "https://example.com/1.png"}]}`,
		"missing id":       `{"items": [{"image": "https://example.com/1.png"}]}`,
		"missing image":    `{"items": [{"id": "9f4c3b8e-3c1a-4d6e-9a51-0d4a6b3e2f10"}]}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			items, err := parser.Parse(context.Background(), []byte(payload))
			assert.Error(t, err)
			assert.Nil(t, items)
		})
	}
}

func TestJSONParser_Parse_ContextCancelled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parser := NewJSONParser(logger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := parser.Parse(ctx, []byte(`{"items": []}`))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, items)
}
