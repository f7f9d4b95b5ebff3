//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"onboarding/internal/platform/config"
	"onboarding/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	broker   string
	producer *Producer
	topic    string
}

func TestProducerIntegrationSuite(t *testing.T) {
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker
	s.topic = "onboarding.audit.it"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	p, err := NewProducer(ctx, config.Kafka{
		Brokers:    []string{s.broker},
		AuditTopic: s.topic,
		ClientID:   "onboarding-it",
	})
	s.Require().NoError(err)
	s.Require().NotNil(p)
	s.producer = p
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *ProducerIntegrationSuite) TestEnsureTopicIsRepeatable() {
	ctx := context.Background()
	s.Require().NoError(s.producer.EnsureTopic(ctx, 3, 1))
	s.Require().NoError(s.producer.EnsureTopic(ctx, 3, 1))
	s.NoError(s.producer.Health(ctx))
}

func (s *ProducerIntegrationSuite) TestPublishedRecordCarriesKeyAndEventType() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(s.producer.EnsureTopic(ctx, 1, 1))

	payload := []byte(`{"action":"onboarding_step_completed","step":"profile"}`)
	s.Require().NoError(s.producer.Publish(ctx, "user-42", "onboarding_step_completed", payload))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var found *kgo.Record
	for found == nil {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "record not consumed before deadline")
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) == "user-42" {
				found = r
			}
		})
	}

	s.Equal(payload, found.Value)
	s.Require().Len(found.Headers, 1)
	s.Equal("event_type", found.Headers[0].Key)
	s.Equal("onboarding_step_completed", string(found.Headers[0].Value))
}
