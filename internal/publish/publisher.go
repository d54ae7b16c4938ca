// internal/publish/publisher.go
package publish

import "context"

// Publisher posts the human-readable steal summary as a reply to the
// inbound cast. The economic resolution is durable before this runs; a
// publish failure is logged, never rolled back.
type Publisher interface {
	// PublishReply posts text as a reply to parentRef, optionally with
	// an embedded URL, and returns the new post's reference.
	PublishReply(ctx context.Context, parentRef, text, embedURL string) (string, error)
}
