// Package kafkaconsumer drains layer invalidation events from Kafka and
// purges the affected cover cache entries.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/invalidation"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/observability"
)

// LayerPurger drops every cached cover of a layer and reports how many
// keys were removed.
type LayerPurger interface {
	PurgeLayer(ctx context.Context, layer string) (int, error)
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	store  LayerPurger
	dedupe *seqDedupe
}

func New(cfg Config, logger *slog.Logger, store LayerPurger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		store:  store,
		dedupe: newSeqDedupe(cfg.DedupeSize),
	}
}

// Start joins the consumer group and processes events until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if c.store == nil {
		return errors.New("kafkaconsumer: store is required")
	}
	if len(c.cfg.Brokers) == 0 || c.cfg.Topic == "" || c.cfg.GroupID == "" {
		return errors.New("kafkaconsumer: brokers, topic and group id are required")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne}

	c.logger.Info("kafka invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("kafka invalidation consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				observability.IncKafkaConsumerError("consume")
				c.logger.Error("consumer error", "err", err)
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne handles a single invalidation message. Returning an error
// leaves the offset unmarked so the message is retried.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	start := time.Now()

	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		observability.IncKafkaConsumerError("decode")
		c.logger.Error("undecodable invalidation event",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		return fmt.Errorf("json decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		// Malformed events are dropped, not retried; redelivery cannot fix them.
		observability.IncKafkaConsumerError("validate")
		c.logger.Warn("invalid invalidation event skipped",
			"topic", msg.Topic, "offset", msg.Offset, "err", err)
		return nil
	}

	if !c.dedupe.shouldApply(ev.Layer, ev.Seq) {
		c.logger.Debug("stale invalidation event skipped",
			"layer", ev.Layer, "seq", ev.Seq)
		return nil
	}

	n, err := c.store.PurgeLayer(ctx, ev.Layer)
	observability.ObserveInvalidation(ev.Op, n, time.Since(start), err)
	if err != nil {
		observability.IncKafkaConsumerError("purge")
		c.logger.Error("layer purge failed",
			"layer", ev.Layer, "op", ev.Op, "err", err)
		return fmt.Errorf("purge layer %q: %w", ev.Layer, err)
	}
	c.dedupe.record(ev.Layer, ev.Seq)

	c.logger.Info("layer invalidated",
		"layer", ev.Layer, "op", ev.Op, "keys", n, "seq", ev.Seq)
	return nil
}
