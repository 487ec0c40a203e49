// Package eventbridge publishes clothing item domain events to AWS EventBridge.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/domain/events"
)

// Source is the EventBridge source of every published event.
const Source = "clothing-api"

// EventBridgeAPI is the subset of the EventBridge client used here
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher implements ports.EventPublisher on EventBridge
type Publisher struct {
	client       EventBridgeAPI
	eventBusName string
	logger       *zap.Logger
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a publisher for the named bus
func NewPublisher(client EventBridgeAPI, eventBusName string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, eventBusName: eventBusName, logger: logger}
}

// Publish sends one event. A rejected entry is reported as an error.
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.GetEventType(), err)
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(Source),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
			Resources:    []string{fmt.Sprintf("clothing-item/%s", event.GetAggregateID())},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to publish event to EventBridge: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for _, entry := range result.Entries {
			if entry.ErrorCode != nil {
				return fmt.Errorf("event %s rejected: %s: %s",
					event.GetEventType(), aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("Event published to EventBridge",
		zap.String("eventType", event.GetEventType()),
		zap.String("itemID", event.GetAggregateID()),
		zap.String("eventBus", p.eventBusName),
	)
	return nil
}

// NoopPublisher drops every event. It is used when no bus is configured.
type NoopPublisher struct{}

var _ ports.EventPublisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, events.DomainEvent) error { return nil }
