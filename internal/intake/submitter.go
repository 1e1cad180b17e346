package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediation-cms/internal/domain/submissions"
	"mediation-cms/internal/platform/httpclient"
)

const submitPath = "/api/submit-service-request"

// HTTPSubmitter envía el wizard al endpoint del sitio.
type HTTPSubmitter struct {
	client *httpclient.Client
}

func NewHTTPSubmitter(client *httpclient.Client) *HTTPSubmitter {
	return &HTTPSubmitter{client: client}
}

type submitBody struct {
	ServiceType string         `json:"serviceType"`
	FormData    map[string]any `json:"formData"`
}

type submitReply struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId"`
	Message      string `json:"message"`
}

func (s *HTTPSubmitter) SubmitServiceRequest(ctx context.Context, p Payload) (string, error) {
	var headers map[string]string
	if k := strings.TrimSpace(p.IdempotencyKey); k != "" {
		headers = map[string]string{submissions.IdempotencyHeader: k}
	}

	var out submitReply
	err := s.client.PostJSON(ctx, submitPath, headers, submitBody{
		ServiceType: p.ServiceType,
		FormData:    p.FormData,
	}, &out)
	if err != nil {
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "", errors.New(apiErr.Message)
		}
		return "", fmt.Errorf("submit service request: %w", err)
	}

	if !out.Success || out.SubmissionID == "" {
		msg := strings.TrimSpace(out.Message)
		if msg == "" {
			msg = "submission was not accepted"
		}
		return "", errors.New(msg)
	}
	return out.SubmissionID, nil
}
