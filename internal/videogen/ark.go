package videogen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
)

// Ark renders through Volcengine Ark content generation tasks (Seedance models).
type Ark struct {
	client     *arkruntime.Client
	model      string
	httpClient *http.Client
}

func NewArk(apiKey, baseURL, modelID string) (*Ark, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ark: api key is required")
	}
	client := arkruntime.NewClientWithApiKey(apiKey, arkruntime.WithBaseUrl(baseURL))
	return &Ark{
		client:     client,
		model:      modelID,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func (a *Ark) Submit(ctx context.Context, req Request) (Operation, error) {
	createReq := model.CreateContentGenerationTaskRequest{
		Model: a.model,
		Content: []*model.CreateContentGenerationContentItem{
			{
				Type: model.ContentGenerationContentItemTypeText,
				Text: volcengine.String(arkPrompt(req)),
			},
		},
	}
	resp, err := a.client.CreateContentGenerationTask(ctx, createReq)
	if err != nil {
		return Operation{}, fmt.Errorf("ark create content generation task: %w", err)
	}
	if strings.TrimSpace(resp.ID) == "" {
		return Operation{}, fmt.Errorf("ark create content generation task: empty task id")
	}
	return Operation{ID: resp.ID}, nil
}

func (a *Ark) Poll(ctx context.Context, op Operation) (Operation, error) {
	req := model.GetContentGenerationTaskRequest{}
	req.ID = op.ID
	resp, err := a.client.GetContentGenerationTask(ctx, req)
	if err != nil {
		return Operation{}, fmt.Errorf("ark get content generation task %s: %w", op.ID, err)
	}
	videoURL := ""
	if strings.EqualFold(resp.Status, "succeeded") {
		videoURL = resp.Content.VideoURL
	}
	return arkOperation(op.ID, resp.Status, videoURL), nil
}

func (a *Ark) Download(ctx context.Context, op Operation) ([]byte, error) {
	videoURL, _ := op.state.(string)
	if strings.TrimSpace(videoURL) == "" {
		return nil, ErrNoVideo
	}
	return fetchURL(ctx, a.httpClient, videoURL)
}

// arkPrompt appends Seedance's inline render flags to the prompt text.
func arkPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(req.Prompt))
	if r := strings.TrimSpace(req.Params.AspectRatio); r != "" {
		b.WriteString(" --ratio " + r)
	}
	if r := strings.TrimSpace(req.Params.Resolution); r != "" {
		b.WriteString(" --resolution " + r)
	}
	return b.String()
}

func arkOperation(id, status, videoURL string) Operation {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "succeeded":
		return Operation{ID: id, Done: true, state: videoURL}
	case "failed", "cancelled", "expired":
		return Operation{ID: id, Done: true, Err: fmt.Errorf("ark task %s %s", id, strings.ToLower(status))}
	default:
		return Operation{ID: id}
	}
}
