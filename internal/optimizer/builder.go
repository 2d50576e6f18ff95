package optimizer

import (
	"bytes"
	"strings"

	genai "google.golang.org/genai"
)

const (
	purpose    = "Analyze the workflow below and recommend how to optimize it."
	directives = `- Explain where the current process bottlenecks are (field "analysis").
- Recommend concrete AI tools or process changes, each with a title, a description and an impact of High, Medium or Low (field "suggestions").
- Provide one ready-to-use prompt the user can reuse for this workflow (field "examplePrompt").`
)

// Build validates the two free-text inputs and renders the instruction body.
// An empty workflow description yields ErrEmptyWorkflow and nothing is sent.
func Build(workflowDescription, painPoints string) (OptimizationRequest, error) {
	workflow := strings.TrimSpace(workflowDescription)
	if workflow == "" {
		return OptimizationRequest{}, ErrEmptyWorkflow
	}

	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", purpose)
	writeSection(&buf, "CURRENT WORKFLOW", workflow)
	writeSection(&buf, "PAIN POINTS", painPoints)
	writeSection(&buf, "TASK", directives)
	writeSection(&buf, "OUTPUT_FORMAT", "JSON only, matching the response schema.")

	return OptimizationRequest{
		WorkflowDescription: workflow,
		PainPoints:          painPoints,
		Instruction:         strings.TrimSpace(buf.String()) + "\n",
		Schema:              ResponseSchema(),
	}, nil
}

func writeSection(buf *bytes.Buffer, name, body string) {
	buf.WriteString("[")
	buf.WriteString(name)
	buf.WriteString("]\n")
	if strings.TrimSpace(body) == "" {
		buf.WriteString("(none)\n\n")
		return
	}
	buf.WriteString(body)
	buf.WriteString("\n\n")
}

// ResponseSchema is the structured-output contract attached to every call.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"analysis": {
				Type:        genai.TypeString,
				Description: "In-depth analysis of the bottlenecks in the current workflow",
			},
			"suggestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
						"impact": {
							Type:        genai.TypeString,
							Description: "High, Medium, or Low",
						},
					},
					Required: []string{"title", "description", "impact"},
				},
			},
			"examplePrompt": {
				Type:        genai.TypeString,
				Description: "A ready-to-use prompt that applies the optimization",
			},
		},
		Required: []string{"analysis", "suggestions"},
	}
}
