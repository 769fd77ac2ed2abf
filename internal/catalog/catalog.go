// Package catalog holds the static table of onboarding video prompts.
//
// Two catalogs exist: cinematic videos and motion-graphics explainers. Step ids are
// disjoint between them by convention only; Lookup prefers the cinematic entry.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	KindCinematic = "cinematic"
	KindExplainer = "explainer"
)

//go:embed prompts.yaml
var promptsYAML []byte

type Entry struct {
	StepID   int    `json:"step_id" yaml:"step"`
	Kind     string `json:"kind" yaml:"-"`
	Filename string `json:"filename" yaml:"filename"`
	Title    string `json:"title" yaml:"title"`
	Prompt   string `json:"prompt" yaml:"prompt"`
}

// Catalog is immutable once built.
type Catalog struct {
	cinematic  map[int]Entry
	explainers map[int]Entry
}

type document struct {
	Palette    map[string]string `yaml:"palette"`
	Cinematic  []Entry           `yaml:"cinematic"`
	Explainers []Entry           `yaml:"explainers"`
}

var defaultCatalog = mustParse(promptsYAML)

// Default returns the built-in onboarding catalog.
func Default() *Catalog {
	return defaultCatalog
}

func New(cinematic, explainers []Entry) *Catalog {
	c := &Catalog{
		cinematic:  make(map[int]Entry, len(cinematic)),
		explainers: make(map[int]Entry, len(explainers)),
	}
	for _, e := range cinematic {
		e.Kind = KindCinematic
		c.cinematic[e.StepID] = e
	}
	for _, e := range explainers {
		e.Kind = KindExplainer
		c.explainers[e.StepID] = e
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}

	pairs := make([]string, 0, len(doc.Palette)*2)
	for name, hex := range doc.Palette {
		pairs = append(pairs, "{"+name+"}", hex)
	}
	expand := strings.NewReplacer(pairs...)

	seen := map[string]int{}
	for _, list := range [][]Entry{doc.Cinematic, doc.Explainers} {
		for i := range list {
			e := &list[i]
			if e.StepID <= 0 {
				return nil, fmt.Errorf("prompt catalog: entry %q has invalid step %d", e.Title, e.StepID)
			}
			if strings.TrimSpace(e.Filename) == "" {
				return nil, fmt.Errorf("prompt catalog: step %d has no filename", e.StepID)
			}
			if prev, ok := seen[e.Filename]; ok {
				return nil, fmt.Errorf("prompt catalog: filename %s used by steps %d and %d", e.Filename, prev, e.StepID)
			}
			seen[e.Filename] = e.StepID
			e.Prompt = strings.TrimSpace(expand.Replace(e.Prompt))
		}
	}
	return New(doc.Cinematic, doc.Explainers), nil
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup checks the cinematic catalog first and falls back to the explainers.
func (c *Catalog) Lookup(stepID int) (Entry, bool) {
	if e, ok := c.cinematic[stepID]; ok {
		return e, true
	}
	e, ok := c.explainers[stepID]
	return e, ok
}

func (c *Catalog) Cinematic() []Entry {
	return sortedEntries(c.cinematic)
}

func (c *Catalog) Explainers() []Entry {
	return sortedEntries(c.explainers)
}

func (c *Catalog) Len() int {
	return len(c.cinematic) + len(c.explainers)
}

// ExplainerIDs returns the explainer step ids in ascending order.
func (c *Catalog) ExplainerIDs() []int {
	return sortedIDs(c.explainers)
}

// AllIDs returns the set union of both catalogs' step ids in ascending order.
func (c *Catalog) AllIDs() []int {
	union := make(map[int]Entry, c.Len())
	for id, e := range c.cinematic {
		union[id] = e
	}
	for id, e := range c.explainers {
		union[id] = e
	}
	return sortedIDs(union)
}

func sortedIDs(m map[int]Entry) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func sortedEntries(m map[int]Entry) []Entry {
	out := make([]Entry, 0, len(m))
	for _, id := range sortedIDs(m) {
		out = append(out, m[id])
	}
	return out
}
