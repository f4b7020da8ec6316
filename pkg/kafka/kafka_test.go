package kafka_test

import (
	"encoding/json"
	"testing"

	"github.com/Astemirdum/my-little-library/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		producer := mocks.NewSyncProducer(t, cfg)
		defer producer.Close()
		producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var got map[string]string
			if err := json.Unmarshal(val, &got); err != nil {
				return err
			}
			if got["action"] != "created" {
				return errors.Errorf("unexpected action %q", got["action"])
			}
			return nil
		})

		p := kafka.NewPublisher(producer)
		require.NoError(t, p.Publish(kafka.BooksTopic, "id-1", map[string]string{"action": "created"}))
	})

	t.Run("err. send", func(t *testing.T) {
		t.Parallel()
		producer := mocks.NewSyncProducer(t, cfg)
		defer producer.Close()
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		p := kafka.NewPublisher(producer)
		require.ErrorIs(t, p.Publish(kafka.MembersTopic, "id-2", struct{}{}), sarama.ErrOutOfBrokers)
	})

	t.Run("err. encode", func(t *testing.T) {
		t.Parallel()
		producer := mocks.NewSyncProducer(t, cfg)
		defer producer.Close()

		p := kafka.NewPublisher(producer)
		require.Error(t, p.Publish(kafka.BooksTopic, "", make(chan int)))
	})
}
