package telemetry

import (
	"context"
	"testing"

	"workshophub/internal/tester"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" authorization=Bearer abc , x-team = hub,broken,=nokey")
	tester.Eq(t, got, map[string]string{"authorization": "Bearer abc", "x-team": "hub"})
	tester.Eq(t, len(parseHeaders("")), 0)
}

func TestSetupDisabled(t *testing.T) {
	tel, err := Setup(context.Background(), Config{ServiceName: "workshophub"})
	tester.NoErr(t, err)
	tester.True(t, tel == nil)
	tester.NoErr(t, tel.Shutdown(context.Background()))
}
