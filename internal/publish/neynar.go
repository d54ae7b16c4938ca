// internal/publish/neynar.go
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const castEndpoint = "https://api.neynar.com/v2/farcaster/cast"

// Neynar publishes replies through the Neynar cast API using a managed
// signer.
type Neynar struct {
	apiKey     string
	signerUUID string
	client     *http.Client
}

func NewNeynar(apiKey, signerUUID string) *Neynar {
	return &Neynar{
		apiKey:     apiKey,
		signerUUID: signerUUID,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Neynar) PublishReply(ctx context.Context, parentRef, text, embedURL string) (string, error) {
	body := map[string]any{
		"signer_uuid": n.signerUUID,
		"text":        text,
		"parent":      parentRef,
	}
	if embedURL != "" {
		body["embeds"] = []map[string]string{{"url": embedURL}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, castEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("api_key", n.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to publish reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d publishing reply", resp.StatusCode)
	}

	var out struct {
		Cast struct {
			Hash string `json:"hash"`
		} `json:"cast"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode cast response: %w", err)
	}
	return out.Cast.Hash, nil
}
