// Command optimize runs one workflow through the optimizer and prints the
// result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"workshophub/internal/credential"
	"workshophub/internal/llm"
	"workshophub/internal/logger"
	"workshophub/internal/optimizer"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "optimize:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	workflow := fs.String("workflow", "", "workflow description; \"-\" reads stdin")
	pain := fs.String("pain", "", "pain points")
	model := fs.String("model", llm.DefaultGeminiModel, "Gemini model id")
	fake := fs.Bool("fake", false, "use the offline fake model")
	timeout := fs.Duration("timeout", optimizer.DefaultSubmitTimeout, "model call timeout")
	verbose := fs.Bool("v", false, "log model calls to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_ = godotenv.Load()

	if *workflow == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		*workflow = string(raw)
	}

	logOut := io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	log := logger.New(logger.Options{Env: "local", Output: logOut})

	var base llm.LLMClient = llm.NewGeminiClient(*model)
	if *fake {
		base = llm.NewFakeClient()
	}
	client := llm.Wrap(base, llm.WithLogging(log))
	defer client.Close()

	env := credential.NewEnvProvider()
	if *fake {
		env.Lookup = func(string) (string, bool) { return "offline", true }
	}
	machine := optimizer.NewMachine(
		credential.NewGate(ctx, env),
		optimizer.NewCompletionClient(client, env),
		optimizer.WithSubmitTimeout(*timeout),
		optimizer.WithLogger(log),
	)
	defer machine.Close()

	if !machine.HasCredential() {
		return fmt.Errorf("no API key: set one of %s", strings.Join(credential.DefaultEnvKeys, ", "))
	}

	start := time.Now()
	snap, err := machine.Submit(ctx, *workflow, *pain)
	if err != nil {
		return err
	}
	log.Info("optimizer finished", "phase", snap.Phase, "elapsed", time.Since(start))
	if snap.Phase != optimizer.PhaseFailed {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Result)
	}
	return fmt.Errorf("%s (%s)", snap.Error, snap.ErrorKind)
}
