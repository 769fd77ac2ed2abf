// Package videogen adapts asynchronous text-to-video APIs to one narrow
// submit / poll / download interface.
package videogen

import (
	"context"
	"errors"
)

// ErrNoVideo means the operation finished but carried no video payload.
var ErrNoVideo = errors.New("operation completed without a video")

type RenderParams struct {
	AspectRatio string
	Resolution  string
}

type Request struct {
	Prompt string
	Params RenderParams
}

// Operation is an opaque handle to a rendering job. Err is set when the
// provider reports the job itself as failed.
type Operation struct {
	ID   string
	Done bool
	Err  error

	state any
}

type Service interface {
	Submit(ctx context.Context, req Request) (Operation, error)
	Poll(ctx context.Context, op Operation) (Operation, error)
	Download(ctx context.Context, op Operation) ([]byte, error)
}
