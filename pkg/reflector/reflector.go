package reflector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/cz-vaporeon/basin/internal/store"
	"github.com/cz-vaporeon/basin/internal/telemetry"
	"github.com/cz-vaporeon/basin/pkg/descriptor"
)

// defaultVisibilityTimeoutSeconds bounds at-least-once reprocessing if the
// reflector crashes mid-batch.
const defaultVisibilityTimeoutSeconds = 10

// defaultBatchSize is the maximum number of messages fetched per poll.
const defaultBatchSize = 10

// Reflector polls an SQS-compatible queue for descriptor-change events.
type Reflector struct {
	sqsClient  *sqs.Client
	queueURL   string
	httpClient *http.Client

	descriptors *store.DescriptorStore
	deployState *store.DeploymentStateStore

	interval          time.Duration
	visibilityTimeout int32
	batchSize         int32

	logger *slog.Logger
}

// New builds a Reflector polling queueURL every interval.
func New(sqsClient *sqs.Client, queueURL string, httpClient *http.Client, descriptors *store.DescriptorStore, deployState *store.DeploymentStateStore, interval time.Duration, logger *slog.Logger) *Reflector {
	return &Reflector{
		sqsClient:         sqsClient,
		queueURL:          queueURL,
		httpClient:        httpClient,
		descriptors:       descriptors,
		deployState:       deployState,
		interval:          interval,
		visibilityTimeout: defaultVisibilityTimeoutSeconds,
		batchSize:         defaultBatchSize,
		logger:            logger,
	}
}

// Run blocks, polling until ctx is cancelled.
func (r *Reflector) Run(ctx context.Context) error {
	r.logger.Info("event reflector started", "interval", r.interval, "queue_url", r.queueURL)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("event reflector stopped")
			return nil
		case <-ticker.C:
			if err := r.poll(ctx); err != nil {
				r.logger.Error("event reflector poll", "error", err)
			}
		}
	}
}

// poll receives one batch of messages, processes each independently, and
// batch-deletes every received message regardless of individual outcome.
// Because descriptor ingestion is idempotent, at-least-once delivery is
// acceptable: redelivering a message whose processing already succeeded,
// or whose processing failed and was logged, is benign.
func (r *Reflector) poll(ctx context.Context) error {
	out, err := r.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(r.queueURL),
		MaxNumberOfMessages: r.batchSize,
		VisibilityTimeout:   r.visibilityTimeout,
		WaitTimeSeconds:     1,
	})
	if err != nil {
		return fmt.Errorf("reflector: receiving messages: %w", err)
	}
	if len(out.Messages) == 0 {
		return nil
	}

	toDelete := make([]types.DeleteMessageBatchRequestEntry, 0, len(out.Messages))
	for i, msg := range out.Messages {
		r.processMessage(ctx, msg)
		toDelete = append(toDelete, types.DeleteMessageBatchRequestEntry{
			Id:            aws.String(fmt.Sprintf("%d", i)),
			ReceiptHandle: msg.ReceiptHandle,
		})
	}

	if _, err := r.sqsClient.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: aws.String(r.queueURL),
		Entries:  toDelete,
	}); err != nil {
		return fmt.Errorf("reflector: batch-deleting messages: %w", err)
	}
	return nil
}

func (r *Reflector) processMessage(ctx context.Context, msg types.Message) {
	if msg.Body == nil {
		r.logger.Error("reflector: message has no body")
		telemetry.ReflectorMessagesTotal.WithLabelValues("parse_error").Inc()
		return
	}

	var event EnvelopedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		r.logger.Error("reflector: decoding event envelope", "error", err)
		telemetry.ReflectorMessagesTotal.WithLabelValues("parse_error").Inc()
		return
	}

	if err := r.ingest(ctx, event.Payload); err != nil {
		r.logger.Error("reflector: ingesting descriptor event",
			"event_id", event.EventID, "kind", event.Payload.Kind, "error", err)
		telemetry.ReflectorMessagesTotal.WithLabelValues("ingest_error").Inc()
		return
	}

	telemetry.ReflectorMessagesTotal.WithLabelValues("ok").Inc()
}

// ingest fetches the descriptor document referenced by payload, persists
// it, and marks its deployment state Pending.
func (r *Reflector) ingest(ctx context.Context, payload DescriptorEvent) error {
	body, err := r.fetchDescriptor(ctx, payload.DescriptorURI)
	if err != nil {
		return err
	}

	var id string
	switch payload.Kind {
	case descriptor.KindDatabase:
		var d descriptor.Database
		if err := json.Unmarshal(body, &d); err != nil {
			return fmt.Errorf("decoding database descriptor: %w", err)
		}
		if err := r.descriptors.PutDatabase(ctx, &d); err != nil {
			return err
		}
		id = d.ID()
	case descriptor.KindTable:
		var t descriptor.Table
		if err := json.Unmarshal(body, &t); err != nil {
			return fmt.Errorf("decoding table descriptor: %w", err)
		}
		if err := r.descriptors.PutTable(ctx, &t); err != nil {
			return err
		}
		id = t.ID()
	case descriptor.KindFlow:
		var f descriptor.Flow
		if err := json.Unmarshal(body, &f); err != nil {
			return fmt.Errorf("decoding flow descriptor: %w", err)
		}
		if err := r.descriptors.PutFlow(ctx, &f); err != nil {
			return err
		}
		id = f.ID()
	default:
		r.logger.Info("reflector: unknown descriptor kind, skipping", "kind", payload.Kind)
		return nil
	}

	r.deployState.Set(ctx, id, descriptor.DeploymentInfo{State: descriptor.StatePending})
	return nil
}

func (r *Reflector) fetchDescriptor(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("building descriptor fetch request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching descriptor %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching descriptor %s: status %d", uri, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor body %s: %w", uri, err)
	}
	return body, nil
}
