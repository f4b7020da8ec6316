package kafka

import (
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const (
	BooksTopic   = "library.books"
	MembersTopic = "library.members"
)

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

// Publisher sends JSON-encoded values keyed by entity id.
type Publisher interface {
	Publish(topic, key string, v any) error
}

func NewPublisher(producer sarama.SyncProducer) Publisher {
	return &publisher{
		producer: producer,
	}
}

type publisher struct {
	producer sarama.SyncProducer
}

func (p *publisher) Publish(topic, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "kafka: encode")
	}
	msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.ByteEncoder(data)}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	if _, _, err = p.producer.SendMessage(msg); err != nil {
		return errors.Wrapf(err, "kafka: send to %s", topic)
	}
	return nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(string, string, any) error { return nil }
