package ollama

import "context"

// TextEmbedder binds a Client to a fixed embedding model so it can be
// plugged wherever a single-argument embed function is expected.
type TextEmbedder struct {
	client *Client
	model  string
}

func NewTextEmbedder(client *Client, model string) *TextEmbedder {
	return &TextEmbedder{client: client, model: model}
}

func (e *TextEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.model, text)
}
