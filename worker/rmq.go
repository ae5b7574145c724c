package worker

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/jgreitemann/svm/rmq"
)

const resultType = "svm.training.result"

type rmqTransactions interface {
	sendResult(task *Task, result Result) error
	acknowledgeDelivery(delivery *amqp.Delivery) error
	rejectDelivery(delivery *amqp.Delivery, log *zerolog.Logger)
	deliveries() <-chan amqp.Delivery
	closed() <-chan *amqp.Error
	close()
}

type brokerDialer func() (rmqTransactions, error)

type brokerClient struct {
	client *rmq.Client
}

func dialBroker() (rmqTransactions, error) {
	client, err := rmq.NewClient()
	if err != nil {
		return nil, err
	}
	return &brokerClient{client}, nil
}

func (b *brokerClient) close() {
	b.client.Close()
}

func (b *brokerClient) deliveries() <-chan amqp.Delivery {
	return b.client.Deliveries
}

func (b *brokerClient) closed() <-chan *amqp.Error {
	return b.client.Closed
}

func (b *brokerClient) sendResult(task *Task, result Result) error {
	result.Sender = "svm"
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return b.client.PublishResult(amqp.Publishing{
		ContentType:   "application/json",
		Type:          resultType,
		MessageId:     result.JobID,
		CorrelationId: task.delivery.CorrelationId,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	})
}

func (b *brokerClient) acknowledgeDelivery(delivery *amqp.Delivery) error {
	return delivery.Ack(false)
}

// rejectDelivery requeues a job once. A second failure drops it.
func (b *brokerClient) rejectDelivery(delivery *amqp.Delivery, log *zerolog.Logger) {
	requeue := !delivery.Redelivered
	log.Info().Bool("requeue", requeue).Msg("Rejecting delivery")
	if err := delivery.Reject(requeue); err != nil {
		log.Err(err).Msg("Failed to reject delivery")
	}
}
