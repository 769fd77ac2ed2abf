package catalog

import (
	"slices"
	"strings"
	"testing"
)

func TestDefaultCatalogContents(t *testing.T) {
	c := Default()
	if c.Len() != 9 {
		t.Fatalf("expected 9 entries, got %d", c.Len())
	}

	wantCinematic := []int{1, 3, 4, 7, 9, 10, 14}
	gotCinematic := make([]int, 0)
	for _, e := range c.Cinematic() {
		gotCinematic = append(gotCinematic, e.StepID)
		if e.Kind != KindCinematic {
			t.Fatalf("step %d kind mismatch: %q", e.StepID, e.Kind)
		}
	}
	if !slices.Equal(gotCinematic, wantCinematic) {
		t.Fatalf("cinematic ids mismatch: got %v want %v", gotCinematic, wantCinematic)
	}
	if got := c.ExplainerIDs(); !slices.Equal(got, []int{8, 11}) {
		t.Fatalf("explainer ids mismatch: got %v", got)
	}
}

func TestLookupFindsEveryCatalogedStep(t *testing.T) {
	c := Default()
	for _, id := range c.AllIDs() {
		e, ok := c.Lookup(id)
		if !ok {
			t.Fatalf("expected step %d to be found", id)
		}
		if e.StepID != id {
			t.Fatalf("lookup(%d) returned step %d", id, e.StepID)
		}
		if e.Filename == "" || e.Title == "" || e.Prompt == "" {
			t.Fatalf("step %d has empty fields: %+v", id, e)
		}
	}
	for _, id := range []int{0, 2, 5, 6, 12, 13, 15, 16, 99, -1} {
		if _, ok := c.Lookup(id); ok {
			t.Fatalf("expected step %d to be missing", id)
		}
	}
}

func TestLookupExplainerFallback(t *testing.T) {
	e, ok := Default().Lookup(8)
	if !ok {
		t.Fatal("expected step 8")
	}
	if e.Kind != KindExplainer || e.Filename != "step08-openrouter.mp4" {
		t.Fatalf("unexpected explainer entry: %+v", e)
	}
}

func TestPromptsExpandPalette(t *testing.T) {
	for _, id := range Default().AllIDs() {
		e, _ := Default().Lookup(id)
		if strings.Contains(e.Prompt, "{navy}") || strings.Contains(e.Prompt, "{red}") || strings.Contains(e.Prompt, "{orange}") {
			t.Fatalf("step %d has unexpanded placeholder: %s", id, e.Prompt)
		}
		if !strings.Contains(e.Prompt, "#0f1128") {
			t.Fatalf("step %d prompt missing navy colour", id)
		}
		if strings.Contains(e.Prompt, "\n") {
			t.Fatalf("step %d prompt should be folded to one line", id)
		}
	}
	welcome, _ := Default().Lookup(1)
	if !strings.Contains(welcome.Prompt, "(#e9484d to #ef9563)") {
		t.Fatalf("welcome prompt missing gradient: %s", welcome.Prompt)
	}
}

func TestAllIDsDeduplicatesCollisions(t *testing.T) {
	c := New(
		[]Entry{{StepID: 1, Filename: "a.mp4", Title: "A"}, {StepID: 5, Filename: "b.mp4", Title: "B"}},
		[]Entry{{StepID: 5, Filename: "c.mp4", Title: "C"}, {StepID: 2, Filename: "d.mp4", Title: "D"}},
	)
	if got := c.AllIDs(); !slices.Equal(got, []int{1, 2, 5}) {
		t.Fatalf("expected deduplicated ids, got %v", got)
	}
	e, _ := c.Lookup(5)
	if e.Title != "B" {
		t.Fatalf("expected cinematic entry to win collision, got %q", e.Title)
	}
}

func TestParseRejectsDuplicateFilenames(t *testing.T) {
	doc := `
cinematic:
  - step: 1
    filename: same.mp4
    title: One
    prompt: first
explainers:
  - step: 2
    filename: same.mp4
    title: Two
    prompt: second
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected duplicate filename error")
	}
}
