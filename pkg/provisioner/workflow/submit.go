package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Provisioner submits compiled job specs to the workflow engine over HTTP.
// The embedded client is expected to be long-lived and shared across every
// submission for connection pooling.
type Provisioner struct {
	baseURL string
	client  *http.Client
}

// New builds a provisioner targeting baseURL, reusing client.
func New(baseURL string, client *http.Client) *Provisioner {
	return &Provisioner{baseURL: baseURL, client: client}
}

// Submit POSTs spec to <base>/api/jobs. A non-2xx response is a
// provisioner error carrying the response body.
func (p *Provisioner) Submit(ctx context.Context, spec *JobSpec) error {
	body, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("workflow: encoding job spec %q: %w", spec.UUID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/jobs", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("workflow: building request for job %q: %w", spec.UUID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("workflow: submitting job %q: %w", spec.UUID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("workflow: job %q submission failed with status %d: %s", spec.UUID, resp.StatusCode, respBody)
	}
	return nil
}
