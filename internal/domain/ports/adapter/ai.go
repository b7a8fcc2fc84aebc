package adapter

import (
	"context"
	"fmt"
)

// AIServiceAdapter is the port for a single text-generation provider.
// Implementations must be safe for concurrent use and must not retry on
// their own; retries belong to the fallback chain.
type AIServiceAdapter interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type ProviderErrorKind string

const (
	ProviderErrTransport ProviderErrorKind = "transport"
	ProviderErrStatus    ProviderErrorKind = "status"
	ProviderErrMalformed ProviderErrorKind = "malformed"
)

// ProviderError is returned by adapters for any failed call.
type ProviderError struct {
	Provider   string
	Kind       ProviderErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Kind == ProviderErrStatus {
		return fmt.Sprintf("%s: http %d", e.Provider, e.StatusCode)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PromptStyle selects how much context a provider's prompt carries.
type PromptStyle int

const (
	PromptFull    PromptStyle = iota // whole optimized window plus profile
	PromptCompact                    // last few turns with truncated replies
)
