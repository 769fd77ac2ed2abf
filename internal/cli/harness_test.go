package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"onboarding-videos/internal/catalog"
	"onboarding-videos/internal/config"
	"onboarding-videos/internal/videogen"
)

type stubService struct {
	failPrompts map[string]bool
	prompts     []string
}

func (s *stubService) Submit(_ context.Context, req videogen.Request) (videogen.Operation, error) {
	s.prompts = append(s.prompts, req.Prompt)
	if s.failPrompts[req.Prompt] {
		return videogen.Operation{}, fmt.Errorf("rejected")
	}
	return videogen.Operation{ID: fmt.Sprintf("op-%d", len(s.prompts))}, nil
}

func (s *stubService) Poll(_ context.Context, op videogen.Operation) (videogen.Operation, error) {
	op.Done = true
	return op, nil
}

func (s *stubService) Download(_ context.Context, _ videogen.Operation) ([]byte, error) {
	return []byte("mp4"), nil
}

type cliHarness struct {
	tmp          string
	outputDir    string
	configPath   string
	svc          *stubService
	constructed  int
	lastSettings config.Settings
}

// newCLIHarness isolates settings and credentials and swaps in the stub
// service and a two-entry catalog.
func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	tmp := t.TempDir()
	h := &cliHarness{
		tmp:        tmp,
		outputDir:  filepath.Join(tmp, "videos"),
		configPath: filepath.Join(tmp, "missing.yaml"),
		svc:        &stubService{},
	}
	for _, key := range []string{
		"ONBOARDING_PROVIDER", "ONBOARDING_MODEL", "ONBOARDING_OUTPUT_DIR",
		"ONBOARDING_MAX_POLL_ATTEMPTS", "ONBOARDING_MIRROR_ENDPOINT", config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ONBOARDING_POLL_INTERVAL", "0s")
	t.Setenv(config.EnvGeminiAPIKey, "test-key")
	t.Setenv(config.EnvArkAPIKey, "")

	prevService, prevCatalog := newService, loadCatalog
	t.Cleanup(func() {
		newService, loadCatalog = prevService, prevCatalog
	})
	newService = func(_ context.Context, s config.Settings, _ string) (videogen.Service, error) {
		h.constructed++
		h.lastSettings = s
		return h.svc, nil
	}
	loadCatalog = func() *catalog.Catalog {
		return catalog.New(
			[]catalog.Entry{{StepID: 1, Filename: "step01-welcome.mp4", Title: "Welcome", Prompt: "welcome prompt"}},
			[]catalog.Entry{{StepID: 8, Filename: "step08-openrouter.mp4", Title: "OpenRouter", Prompt: "openrouter prompt"}},
		)
	}
	return h
}

func (h *cliHarness) args(extra ...string) []string {
	return append([]string{"--output-dir", h.outputDir, "--config", h.configPath}, extra...)
}

func (h *cliHarness) exists(name string) bool {
	_, err := os.Stat(filepath.Join(h.outputDir, name))
	return err == nil
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()
	defer r.Close()

	out := make(chan []byte, 1)
	go func() {
		b, _ := io.ReadAll(r)
		out <- b
	}()

	fn()

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return string(<-out)
}
