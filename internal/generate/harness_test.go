package generate

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"onboarding-videos/internal/catalog"
	"onboarding-videos/internal/videogen"
)

type fakeService struct {
	// doneAfter is the number of polls before an operation completes; -1 never completes.
	doneAfter   int
	data        []byte
	opErr       error
	pollErr     error
	downloadErr error
	failPrompts map[string]bool

	submits   int
	polls     int
	downloads int
	prompts   []string
	opPolls   map[string]int
}

func newFakeService(doneAfter int) *fakeService {
	return &fakeService{doneAfter: doneAfter, data: []byte("mp4"), opPolls: map[string]int{}}
}

func (f *fakeService) Submit(_ context.Context, req videogen.Request) (videogen.Operation, error) {
	f.submits++
	f.prompts = append(f.prompts, req.Prompt)
	if f.failPrompts[req.Prompt] {
		return videogen.Operation{}, fmt.Errorf("quota exceeded")
	}
	id := fmt.Sprintf("op-%d", f.submits)
	return videogen.Operation{ID: id, Done: f.doneAfter == 0}, nil
}

func (f *fakeService) Poll(_ context.Context, op videogen.Operation) (videogen.Operation, error) {
	f.polls++
	if f.pollErr != nil {
		return videogen.Operation{}, f.pollErr
	}
	f.opPolls[op.ID]++
	if f.doneAfter >= 0 && f.opPolls[op.ID] >= f.doneAfter {
		op.Done = true
		op.Err = f.opErr
	}
	return op, nil
}

func (f *fakeService) Download(_ context.Context, _ videogen.Operation) ([]byte, error) {
	f.downloads++
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.data, nil
}

func (f *fakeService) calls() int {
	return f.submits + f.polls + f.downloads
}

type fakePublisher struct {
	err   error
	paths []string
}

func (p *fakePublisher) Publish(_ context.Context, localPath string) (string, error) {
	p.paths = append(p.paths, localPath)
	if p.err != nil {
		return "", p.err
	}
	return "videos/" + localPath, nil
}

func scenarioCatalog() *catalog.Catalog {
	return catalog.New(
		[]catalog.Entry{{StepID: 1, Filename: "step01-welcome.mp4", Title: "Welcome", Prompt: "welcome prompt"}},
		[]catalog.Entry{{StepID: 8, Filename: "step08-openrouter.mp4", Title: "OpenRouter", Prompt: "openrouter prompt"}},
	)
}

type testDriver struct {
	*Driver
	svc    *fakeService
	out    *bytes.Buffer
	sleeps int
}

func newTestDriver(t *testing.T, cat *catalog.Catalog, svc *fakeService) *testDriver {
	t.Helper()
	td := &testDriver{svc: svc, out: &bytes.Buffer{}}
	td.Driver = &Driver{
		Catalog:         cat,
		Service:         svc,
		OutputDir:       t.TempDir(),
		Params:          videogen.RenderParams{AspectRatio: "16:9", Resolution: "720p"},
		PollInterval:    10 * time.Second,
		MaxPollAttempts: 60,
		Out:             td.out,
		Sleep: func(context.Context, time.Duration) error {
			td.sleeps++
			return nil
		},
	}
	return td
}
