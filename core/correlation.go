package core

import (
	"strings"

	"github.com/google/uuid"
)

// conversationNamespace seeds deterministic conversation-id derivation
// so every transfer in one request shares the same conversation id.
var conversationNamespace = uuid.MustParse("8f28b39c-6f3e-4e2b-9f14-5b1a9254c0de")

// ResolveCorrelationID returns the caller-supplied identifier when it
// is a well-formed UUID, otherwise a freshly generated one. Resolution
// is idempotent for well-formed input, so it is safe to resolve again
// downstream without minting a second id.
func ResolveCorrelationID(supplied string, generate func() string) string {
	trimmed := strings.TrimSpace(supplied)
	if trimmed != "" {
		if parsed, err := uuid.Parse(trimmed); err == nil {
			return parsed.String()
		}
	}
	if generate != nil {
		return generate()
	}
	return uuid.NewString()
}

// ConversationID derives the stable conversation identifier for a
// request from its correlation id. Same correlation id in, same
// conversation id out.
func ConversationID(correlationID string) string {
	trimmed := strings.TrimSpace(correlationID)
	return uuid.NewSHA1(conversationNamespace, []byte(trimmed)).String()
}
