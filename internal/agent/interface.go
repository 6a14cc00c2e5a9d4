package agent

import "context"

// Agent is the uniform "prompt in, text out" contract used by every
// language model stage.
type Agent interface {
	Complete(ctx context.Context, call Call) (string, error)
}

// Model is the language model capability behind the agent.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Call is one agent invocation. CacheKey is optional; when set and caching
// is enabled a previous answer for the same key is returned without calling
// the model.
type Call struct {
	System    string
	User      string
	MaxTokens int
	CacheKey  string
}

// Request is what the agent hands to the model.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}
