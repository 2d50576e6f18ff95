package optimizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshophub/internal/credential"
	"workshophub/internal/llm"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestCompletionClientRereadsKeyEachCall(t *testing.T) {
	env := map[string]string{"GEMINI_API_KEY": "first"}
	fake := llm.NewFakeClient()
	client := NewCompletionClient(fake, &credential.EnvProvider{Keys: []string{"GEMINI_API_KEY"}, Lookup: mapLookup(env)})
	req, err := Build("weekly report", "")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), req)
	require.NoError(t, err)
	env["GEMINI_API_KEY"] = "rotated"
	_, err = client.Complete(context.Background(), req)
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "first", reqs[0].APIKey)
	assert.Equal(t, "rotated", reqs[1].APIKey)
}

func TestCompletionClientMissingKeyIsCredentialError(t *testing.T) {
	fake := llm.NewFakeClient()
	client := NewCompletionClient(fake, &credential.EnvProvider{Keys: []string{"GEMINI_API_KEY"}, Lookup: mapLookup(nil)})
	req, _ := Build("weekly report", "")

	_, err := client.Complete(context.Background(), req)
	var cErr *CredentialError
	require.True(t, errors.As(err, &cErr))
	assert.ErrorIs(t, err, credential.ErrNoCredential)
	assert.Empty(t, fake.Requests())
}

func TestCompletionClientClassifiesRemoteErrors(t *testing.T) {
	req, _ := Build("weekly report", "")
	keys := &credential.EnvProvider{Keys: []string{"K"}, Lookup: mapLookup(map[string]string{"K": "k"})}

	cases := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"entity not found", errors.New("Requested entity was not found."), KindCredential},
		{"uppercase", errors.New("MODEL NOT FOUND"), KindCredential},
		{"network", errors.New("dial tcp 10.0.0.1:443: i/o timeout"), KindTransport},
		{"server", errors.New("Error 500, Message: internal"), KindTransport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := llm.NewFakeClient()
			fake.Script("", tc.err)
			_, err := NewCompletionClient(fake, keys).Complete(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestCompletionClientRefusesInvalidRequest(t *testing.T) {
	fake := llm.NewFakeClient()
	client := NewCompletionClient(fake, nil)
	_, err := client.Complete(context.Background(), OptimizationRequest{WorkflowDescription: "  "})
	assert.ErrorIs(t, err, ErrEmptyWorkflow)
	assert.Empty(t, fake.Requests())
}

func TestCompletionClientRateLimitWaitShowsGenericMessage(t *testing.T) {
	req, _ := Build("weekly report", "")
	keys := &credential.EnvProvider{Keys: []string{"K"}, Lookup: mapLookup(map[string]string{"K": "k"})}
	client := NewCompletionClient(llm.Wrap(llm.NewFakeClient(), llm.WithRateLimit(0.001, 1)), keys)

	_, err := client.Complete(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Complete(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrRateLimited)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, GenericFailureMessage, UserMessage(err))
	assert.False(t, IsCredentialShaped(err))
}
