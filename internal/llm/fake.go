package llm

import (
	"context"
	"sync"
)

// FakeReply is a deterministic, schema-conforming optimizer reply.
const FakeReply = `{
  "analysis": "The workflow relies on manual copy and paste between tools, so most of the time goes into repetitive transfer and reformatting.",
  "suggestions": [
    {"title": "Automate the data hand-off", "description": "Export the source data on a schedule and feed it to the target tool with a script or an integration.", "impact": "High"},
    {"title": "Template the output", "description": "Keep one reusable template so each run only updates the data instead of the layout.", "impact": "Medium"},
    {"title": "Draft summaries with AI", "description": "Ask a model to draft the commentary from the exported data and review it before sharing.", "impact": "Low"}
  ],
  "examplePrompt": "You are an operations assistant. Given the attached table, write a three-bullet summary of week-over-week changes."
}`

// FakeClient returns a scripted reply for offline/dev use and tests.
type FakeClient struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []Request
}

func NewFakeClient() *FakeClient {
	return &FakeClient{reply: FakeReply}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Script sets the next replies. A non-nil err wins over reply.
func (f *FakeClient) Script(reply string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
	f.err = err
}

// Requests returns the requests seen so far, in order.
func (f *FakeClient) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func (f *FakeClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
