package scenario

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// assertGolden compares the text rendering of sum against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
//
// The rendering includes elapsed times, so callers should run the battery
// with a deterministic runner clock.
func assertGolden(t *testing.T, name string, sum *Summary) {
	t.Helper()

	var buf bytes.Buffer
	if err := sum.WriteText(&buf); err != nil {
		t.Fatalf("render summary: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}
