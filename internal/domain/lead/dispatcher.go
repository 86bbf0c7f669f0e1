package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"funnelwerk/internal/domain/funnel"
)

// WebhookDispatcher posts submissions to the CRM intake webhook. By default
// it makes exactly one attempt per call: a failed submit is surfaced to the
// visitor, who decides whether to press submit again. Automatic retries can
// be enabled per deployment, at the cost of possible duplicate leads when a
// response is lost after the CRM accepted the request.
type WebhookDispatcher struct {
	client *retryablehttp.Client
	url    string
}

// NewWebhookDispatcher builds a dispatcher for the given intake URL.
// retryMax 0 disables automatic retries.
func NewWebhookDispatcher(url string, timeout time.Duration, retryMax int) *WebhookDispatcher {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.HTTPClient.Timeout = timeout
	client.Logger = nil
	return &WebhookDispatcher{client: client, url: url}
}

// webhookPayload mirrors the FunnelSubmission wire shape the CRM expects.
type webhookPayload struct {
	FunnelID string                 `json:"funnelId"`
	Contact  Contact                `json:"contact"`
	Answers  map[string]interface{} `json:"answers"`
	Scoring  webhookScoring         `json:"scoring"`
	Metadata webhookMetadata        `json:"metadata"`
}

type webhookScoring struct {
	TotalScore     int                   `json:"totalScore"`
	Classification funnel.Classification `json:"classification"`
	Tags           []string              `json:"tags"`
}

type webhookMetadata struct {
	Source      string `json:"source"`
	Timestamp   string `json:"timestamp"`
	GDPRConsent bool   `json:"gdprConsent"`
	UserAgent   string `json:"userAgent,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
}

// Dispatch serializes the submission and performs the intake POST. Any
// non-2xx status is an error; the response body is not consumed beyond
// error reporting.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, sub *Submission) error {
	payload := webhookPayload{
		FunnelID: sub.FunnelID,
		Contact:  sub.Contact,
		Answers:  flattenAnswers(sub.Answers),
		Scoring: webhookScoring{
			TotalScore:     sub.TotalScore,
			Classification: sub.Classification,
			Tags:           sub.Tags,
		},
		Metadata: webhookMetadata{
			Source:      SourceTag,
			Timestamp:   sub.SubmittedAt.UTC().Format(time.RFC3339),
			GDPRConsent: sub.GDPRConsent,
			UserAgent:   sub.UserAgent,
			Referrer:    sub.Referrer,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("crm_dispatch_failed funnel=%s error=%q", sub.FunnelID, err)
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("crm_dispatch_rejected funnel=%s status=%d", sub.FunnelID, resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrDispatchFailed, resp.StatusCode)
	}
	return nil
}

// flattenAnswers converts tagged answer values into the plain
// string / string-list shapes the CRM payload uses.
func flattenAnswers(answers map[string]funnel.AnswerValue) map[string]interface{} {
	out := make(map[string]interface{}, len(answers))
	for field, a := range answers {
		switch a.Kind {
		case funnel.AnswerMulti:
			out[field] = a.List
		default:
			out[field] = a.Text
		}
	}
	return out
}
