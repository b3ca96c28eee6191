package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks requests rejected before they are sent.
var ErrInvalid = errors.New("invalid request")

// ValidatePolicy checks the fields the gateway applies on update.
func ValidatePolicy(p SecurityPolicy) error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: policy id must be positive, got %d", ErrInvalid, p.ID)
	}
	if p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be within [0,1], got %v", ErrInvalid, p.Threshold)
	}
	return nil
}

// ValidateChatRequest requires at least one message with a role.
func ValidateChatRequest(r ChatCompletionRequest) error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: chat request needs at least one message", ErrInvalid)
	}
	for i, m := range r.Messages {
		if strings.TrimSpace(m.Role) == "" {
			return fmt.Errorf("%w: message %d has no role", ErrInvalid, i)
		}
	}
	return nil
}
