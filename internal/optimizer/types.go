package optimizer

import (
	"strings"

	genai "google.golang.org/genai"
)

// Impact is the priority attached to a suggestion. The model is asked for one
// of High, Medium or Low; other literals are passed through unchanged.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// Known reports whether the impact is one of the three requested values.
func (i Impact) Known() bool {
	switch i {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return true
	}
	return false
}

type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      Impact `json:"impact"`
}

// OptimizationResult is the validated reply for one submission.
// Suggestions is never nil once produced by Parse.
type OptimizationResult struct {
	Analysis      string       `json:"analysis"`
	Suggestions   []Suggestion `json:"suggestions"`
	ExamplePrompt *string      `json:"examplePrompt,omitempty"`
}

// HasExamplePrompt reports whether the reply carried an examplePrompt field.
func (r *OptimizationResult) HasExamplePrompt() bool {
	return r != nil && r.ExamplePrompt != nil
}

func (r *OptimizationResult) clone() *OptimizationResult {
	if r == nil {
		return nil
	}
	out := &OptimizationResult{
		Analysis:    r.Analysis,
		Suggestions: append([]Suggestion{}, r.Suggestions...),
	}
	if r.ExamplePrompt != nil {
		p := *r.ExamplePrompt
		out.ExamplePrompt = &p
	}
	return out
}

// OptimizationRequest is built once per submission and consumed once by the
// completion client.
type OptimizationRequest struct {
	WorkflowDescription string
	PainPoints          string
	Instruction         string
	Schema              *genai.Schema
}

func (r OptimizationRequest) valid() bool {
	return strings.TrimSpace(r.WorkflowDescription) != ""
}
