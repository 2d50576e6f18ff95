package optimizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genai "google.golang.org/genai"
)

func TestBuildRejectsBlankWorkflow(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t "} {
		_, err := Build(in, "slow")
		require.Error(t, err, "input %q", in)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, KindValidation, KindOf(err))
	}
}

func TestBuildEmbedsInputsAndDirectives(t *testing.T) {
	req, err := Build("  Copy rows from spreadsheet to slides manually \n", "takes 2 hours weekly")
	require.NoError(t, err)

	assert.Equal(t, "Copy rows from spreadsheet to slides manually", req.WorkflowDescription)
	assert.Equal(t, "takes 2 hours weekly", req.PainPoints)
	for _, want := range []string{
		"[CURRENT WORKFLOW]\nCopy rows from spreadsheet to slides manually",
		"[PAIN POINTS]\ntakes 2 hours weekly",
		`field "analysis"`,
		`field "suggestions"`,
		`field "examplePrompt"`,
	} {
		assert.Contains(t, req.Instruction, want)
	}
}

func TestBuildKeepsPainPointsVerbatim(t *testing.T) {
	req, err := Build("weekly report", "  two spaces  ")
	require.NoError(t, err)
	assert.Equal(t, "  two spaces  ", req.PainPoints)

	req, err = Build("weekly report", "")
	require.NoError(t, err)
	assert.Equal(t, "", req.PainPoints)
	assert.True(t, strings.Contains(req.Instruction, "[PAIN POINTS]\n(none)"))
}

func TestResponseSchemaRequiredFields(t *testing.T) {
	s := ResponseSchema()
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"analysis", "suggestions"}, s.Required)

	items := s.Properties["suggestions"].Items
	require.NotNil(t, items)
	assert.ElementsMatch(t, []string{"title", "description", "impact"}, items.Required)
	assert.NotContains(t, s.Required, "examplePrompt")
}
