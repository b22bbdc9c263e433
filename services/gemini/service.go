// Package geminisvc implements plan.TextGenerator against the Google
// Generative Language REST API.
package geminisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/disciplan/core"
	"github.com/trezcool/disciplan/core/plan"
)

const (
	// maxResponseSize limits the response body read; plans are small.
	maxResponseSize = 1 << 20 // 1MB

	defaultTimeout = 30 * time.Second
)

// mockable
var baseURL = "https://generativelanguage.googleapis.com/v1beta/models"

type service struct {
	apiKey string
	model  string
	client *http.Client
}

var _ plan.TextGenerator = (*service)(nil)

// NewService returns a TextGenerator for the configured Gemini model.
// The zero-value http.Client has no timeout; plan generation is a single
// attempt, so the timeout doubles as the overall deadline.
func NewService(conf core.GeminiConfig) *service {
	return &service{
		apiKey: conf.ApiKey,
		model:  conf.Model,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// request/response shapes of the generateContent endpoint, reduced to the
// fields this app uses.
type (
	generateRequest struct {
		Contents []content `json:"contents"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	part struct {
		Text string `json:"text"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
)

// GenerateText sends a single prompt and returns the model's raw text.
// Callers own extraction/validation of whatever comes back.
func (svc *service) GenerateText(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshaling request")
	}

	url := fmt.Sprintf("%s/%s:generateContent", baseURL, svc.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", svc.apiKey)

	res, err := svc.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling generateContent")
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return "", errors.Wrap(err, "reading response")
	}

	var data generateResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", errors.Wrap(err, "parsing response")
	}
	if res.StatusCode != http.StatusOK {
		if data.Error != nil {
			return "", errors.Errorf("generateContent: %d %s", data.Error.Code, data.Error.Message)
		}
		return "", errors.Errorf("generateContent: status %d", res.StatusCode)
	}
	if len(data.Candidates) == 0 || len(data.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generateContent: no candidates returned")
	}
	return data.Candidates[0].Content.Parts[0].Text, nil
}
