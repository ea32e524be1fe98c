package kafka

import (
	"context"
	"errors"
	"log"

	"clearfeed/config"

	"github.com/IBM/sarama"
)

// RefreshConsumer reads refresh requests from one topic and drives the feed
// service with them.
type RefreshConsumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler *refreshHandler
}

// NewRefreshConsumer joins the configured consumer group. Offsets start at
// the newest message, so requests published while the server was down are
// not replayed.
func NewRefreshConsumer(cfg config.Config, svc FeedRefresher, isUnknown func(error) bool) (*RefreshConsumer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS not set")
	}

	sc := sarama.NewConfig()
	sc.Version = sarama.V3_6_0_0
	sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	sc.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, sc)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ Listening for refresh requests on %s (group %s)", cfg.KafkaTopic, cfg.KafkaGroupID)
	return &RefreshConsumer{
		group:   group,
		topic:   cfg.KafkaTopic,
		handler: &refreshHandler{svc: svc, isUnknown: isUnknown},
	}, nil
}

// Run consumes until ctx is canceled or the group is closed.
// Sessions are rejoined after every rebalance.
func (c *RefreshConsumer) Run(ctx context.Context) {
	go func() {
		for err := range c.group.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()

	for {
		err := c.group.Consume(ctx, []string{c.topic}, c)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) || ctx.Err() != nil {
			log.Println("Refresh consumer stopped")
			return
		}
		if err != nil {
			log.Printf("Error from Kafka consumer: %v", err)
		}
	}
}

// Close leaves the consumer group.
func (c *RefreshConsumer) Close() error {
	return c.group.Close()
}

func (c *RefreshConsumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *RefreshConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim handles one request at a time; a refresh is already a full
// fan-out, so running several at once would only repeat work.
func (c *RefreshConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			log.Printf("📥 Refresh request: partition=%d offset=%d", msg.Partition, msg.Offset)

			mark, err := c.handler.handle(session.Context(), msg.Value)
			if err != nil {
				log.Printf("❌ %v", err)
			}
			if mark {
				session.MarkMessage(msg, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}
