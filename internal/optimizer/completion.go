package optimizer

import (
	"context"
	"errors"

	"workshophub/internal/credential"
	"workshophub/internal/llm"
)

// Completer sends one built request and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, req OptimizationRequest) (string, error)
}

// CompletionClient is the only optimizer component that talks to the model.
// It makes a single attempt per call.
type CompletionClient struct {
	llm  llm.LLMClient
	keys credential.Source
}

func NewCompletionClient(client llm.LLMClient, keys credential.Source) *CompletionClient {
	return &CompletionClient{llm: client, keys: keys}
}

// Complete re-reads the key from the source on every call.
func (c *CompletionClient) Complete(ctx context.Context, req OptimizationRequest) (string, error) {
	if !req.valid() {
		return "", ErrEmptyWorkflow
	}
	if c.keys == nil {
		return "", &CredentialError{Err: credential.ErrNoProvider}
	}
	key, err := c.keys.APIKey(ctx)
	if err != nil {
		if errors.Is(err, credential.ErrNoCredential) {
			return "", &CredentialError{Err: err}
		}
		return "", &TransportError{Err: err}
	}

	raw, err := c.llm.GenerateJSON(llm.WithPhase(ctx, "optimize"), llm.Request{
		APIKey: key,
		Prompt: req.Instruction,
		Schema: req.Schema,
	})
	if err != nil {
		return "", classify(err)
	}
	return raw, nil
}

func classify(err error) error {
	if errors.Is(err, llm.ErrMissingAPIKey) || credentialPattern.MatchString(err.Error()) {
		return &CredentialError{Err: err}
	}
	return &TransportError{Err: err}
}
