package credential

import (
	"context"
	"errors"
	"testing"

	"workshophub/internal/tester"
)

func TestEnvProvider_FirstNonEmptyWins(t *testing.T) {
	env := map[string]string{"GOOGLE_API_KEY": " g-key ", "GEMINI_API_KEY": "   "}
	p := &EnvProvider{Keys: DefaultEnvKeys, Lookup: func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}}

	key, err := p.APIKey(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, key, "g-key")

	has, err := p.HasSelectedCredential(context.Background())
	tester.NoErr(t, err)
	tester.True(t, has)

	delete(env, "GOOGLE_API_KEY")
	_, err = p.APIKey(context.Background())
	tester.True(t, errors.Is(err, ErrNoCredential))
	has, _ = p.HasSelectedCredential(context.Background())
	tester.False(t, has)
}

func TestEnvProvider_ReadsProcessEnv(t *testing.T) {
	t.Setenv("WHUB_TEST_KEY", "from-env")
	p := NewEnvProvider("WHUB_TEST_KEY")
	key, err := p.APIKey(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, key, "from-env")
	tester.NoErr(t, p.OpenSelectCredential(context.Background()))
}
