package fixture

import (
	"context"
	"strings"
	"testing"
)

func TestAllFixturesCompileConcurrently(t *testing.T) {
	results, err := Run(context.Background(), All())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(All()) {
		t.Fatalf("expected %d results, got %d", len(All()), len(results))
	}
	for _, r := range results {
		if strings.TrimSpace(r.Out) == "" {
			t.Errorf("fixture %s produced empty output", r.Name)
		}
	}
}

// TestFixturesAreDeterministic re-runs the full set and checks every
// fixture's emitted text is byte-identical across runs, per spec §5's
// determinism invariant.
func TestFixturesAreDeterministic(t *testing.T) {
	first, err := Run(context.Background(), All())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(context.Background(), All())
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].Out != second[i].Out {
			t.Errorf("fixture %s is non-deterministic across runs", first[i].Name)
		}
	}
}

func TestEachFixtureIndividually(t *testing.T) {
	for _, f := range All() {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			out, err := Compile(f.Prog)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			for _, want := range f.Want {
				if !strings.Contains(out, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, out)
				}
			}
		})
	}
}
