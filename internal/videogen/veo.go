package videogen

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Veo renders through the Gemini API's Veo models.
type Veo struct {
	client *genai.Client
	model  string
}

func NewVeo(ctx context.Context, apiKey, model string) (*Veo, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("veo: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("veo: create client: %w", err)
	}
	return &Veo{client: client, model: model}, nil
}

func (v *Veo) Submit(ctx context.Context, req Request) (Operation, error) {
	op, err := v.client.Models.GenerateVideos(ctx, v.model, req.Prompt, nil, &genai.GenerateVideosConfig{
		AspectRatio: req.Params.AspectRatio,
		Resolution:  req.Params.Resolution,
	})
	if err != nil {
		return Operation{}, fmt.Errorf("veo generate videos: %w", err)
	}
	if op == nil {
		return Operation{}, fmt.Errorf("veo generate videos: empty operation")
	}
	return veoOperation(op), nil
}

func (v *Veo) Poll(ctx context.Context, op Operation) (Operation, error) {
	cur, ok := op.state.(*genai.GenerateVideosOperation)
	if !ok || cur == nil {
		return Operation{}, fmt.Errorf("veo: operation %q was not issued by this service", op.ID)
	}
	next, err := v.client.Operations.GetVideosOperation(ctx, cur, nil)
	if err != nil {
		return Operation{}, fmt.Errorf("veo get operation %s: %w", op.ID, err)
	}
	if next == nil {
		return Operation{}, fmt.Errorf("veo get operation %s: empty operation", op.ID)
	}
	return veoOperation(next), nil
}

// Download returns inline bytes when the API already sent them and fetches the
// file otherwise.
func (v *Veo) Download(ctx context.Context, op Operation) ([]byte, error) {
	cur, ok := op.state.(*genai.GenerateVideosOperation)
	if !ok || cur == nil {
		return nil, fmt.Errorf("veo: operation %q was not issued by this service", op.ID)
	}
	video, err := firstGeneratedVideo(cur)
	if err != nil {
		return nil, err
	}
	if len(video.Video.VideoBytes) > 0 {
		return video.Video.VideoBytes, nil
	}
	data, err := v.client.Files.Download(ctx, genai.NewDownloadURIFromGeneratedVideo(video), nil)
	if err != nil {
		return nil, fmt.Errorf("veo download %s: %w", video.Video.URI, err)
	}
	if len(data) == 0 {
		data = video.Video.VideoBytes
	}
	return data, nil
}

func veoOperation(op *genai.GenerateVideosOperation) Operation {
	out := Operation{ID: op.Name, Done: op.Done, state: op}
	if op.Done && len(op.Error) > 0 {
		out.Err = fmt.Errorf("veo operation %s failed: %v", op.Name, op.Error)
	}
	return out
}

func firstGeneratedVideo(op *genai.GenerateVideosOperation) (*genai.GeneratedVideo, error) {
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return nil, ErrNoVideo
	}
	video := op.Response.GeneratedVideos[0]
	if video == nil || video.Video == nil {
		return nil, ErrNoVideo
	}
	return video, nil
}
