package events

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Consumer polls the shared catalog topic and feeds records to the router.
// Offsets are committed after dispatch regardless of handler outcome: the
// sync contract is log-and-skip, no retries, no dead-lettering.
type Consumer struct {
	client *kgo.Client
	router *Router
	logger zerolog.Logger
}

func NewConsumer(brokers []string, topic, group string, router *Router, logger zerolog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup(group),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Consumer{
		client: client,
		router: router,
		logger: logger.With().Str("component", "events-consumer").Logger(),
	}, nil
}

// Run polls until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error().Err(err).
				Str("topic", topic).
				Int32("partition", partition).
				Msg("fetch error")
		})

		fetches.EachRecord(func(record *kgo.Record) {
			_ = c.router.Dispatch(ctx, record.Value)
		})

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			c.logger.Error().Err(err).Msg("offset commit failed")
		}
	}
}
