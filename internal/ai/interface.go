package ai

import "context"

// Request is a single text-generation call: persona instructions plus the user turn
type Request struct {
	System string
	Prompt string
}

// Backend defines the interface for text-generation backends
type Backend interface {
	// Name identifies the provider in logs
	Name() string

	// Model is the resolved model the backend calls
	Model() string

	// Generate sends the request and returns the generated text
	Generate(ctx context.Context, req Request) (string, error)
}
