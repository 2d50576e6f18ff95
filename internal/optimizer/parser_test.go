package optimizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullReply(t *testing.T) {
	raw := `{"analysis":"manual copy","suggestions":[{"title":"Automate export","description":"use a script","impact":"High"},{"title":"Template","description":"one layout","impact":"Low"}],"examplePrompt":"Summarize this table"}`
	res, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "manual copy", res.Analysis)
	require.Len(t, res.Suggestions, 2)
	assert.Equal(t, Suggestion{Title: "Automate export", Description: "use a script", Impact: ImpactHigh}, res.Suggestions[0])
	assert.Equal(t, ImpactLow, res.Suggestions[1].Impact)
	require.True(t, res.HasExamplePrompt())
	assert.Equal(t, "Summarize this table", *res.ExamplePrompt)
}

func TestParseEmptySuggestionsAndAbsentPrompt(t *testing.T) {
	res, err := Parse(`{"analysis":"nothing to change","suggestions":[]}`)
	require.NoError(t, err)
	assert.Equal(t, "nothing to change", res.Analysis)
	assert.NotNil(t, res.Suggestions)
	assert.Empty(t, res.Suggestions)
	assert.False(t, res.HasExamplePrompt())

	res, err = Parse(`{"analysis":"a","suggestions":[],"examplePrompt":null}`)
	require.NoError(t, err)
	assert.False(t, res.HasExamplePrompt())
}

func TestParseUnknownImpactPassesThrough(t *testing.T) {
	res, err := Parse(`{"analysis":"a","suggestions":[{"title":"t","description":"d","impact":"Critical"}]}`)
	require.NoError(t, err)
	assert.Equal(t, Impact("Critical"), res.Suggestions[0].Impact)
	assert.False(t, res.Suggestions[0].Impact.Known())
	assert.True(t, ImpactMedium.Known())
}

func TestParseSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"not json":                "not json",
		"empty":                   "",
		"array top level":         `[{"analysis":"a"}]`,
		"null":                    `null`,
		"missing analysis":        `{"suggestions":[]}`,
		"analysis not string":     `{"analysis":3,"suggestions":[]}`,
		"missing suggestions":     `{"analysis":"a"}`,
		"suggestions object":      `{"analysis":"a","suggestions":{"title":"t"}}`,
		"suggestion not object":   `{"analysis":"a","suggestions":["t"]}`,
		"missing title":           `{"analysis":"a","suggestions":[{"description":"d","impact":"High"}]}`,
		"missing description":     `{"analysis":"a","suggestions":[{"title":"t","impact":"High"}]}`,
		"missing impact":          `{"analysis":"a","suggestions":[{"title":"t","description":"d"}]}`,
		"prompt wrong type":       `{"analysis":"a","suggestions":[],"examplePrompt":42}`,
		"trailing data":           `{"analysis":"a","suggestions":[]} {"x":1}`,
		"markdown fenced payload": "```json\n{\"analysis\":\"a\",\"suggestions\":[]}\n```",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := Parse(raw)
			require.Error(t, err)
			assert.Nil(t, res)
			var sErr *SchemaError
			assert.True(t, errors.As(err, &sErr), "got %T", err)
			assert.Equal(t, CombinedFailureMessage, UserMessage(err))
			assert.False(t, IsCredentialShaped(err))
		})
	}
}
