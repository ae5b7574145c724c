// Package rmq connects to the RabbitMQ broker carrying training jobs and
// their results.
package rmq

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/jgreitemann/svm/logger"
)

type Config struct {
	Host                    string `envconfig:"SVM_RMQ_HOST" required:"true"`
	Port                    string `envconfig:"SVM_RMQ_PORT" default:"5672"`
	Username                string `envconfig:"SVM_RMQ_USERNAME" required:"true"`
	Password                string `envconfig:"SVM_RMQ_PASSWORD" required:"true"`
	Exchange                string `envconfig:"SVM_RMQ_EXCHANGE" default:"svm-exchange"`
	MaxParallelRequestCount int    `envconfig:"SVM_RMQ_MAX_PARALLEL_REQUESTS" default:"2"`
	TrainingQueue           string `envconfig:"SVM_RMQ_TRAINING_QUEUE" default:"svm.training"`
	ResultQueue             string `envconfig:"SVM_RMQ_RESULT_QUEUE" default:"svm.results"`
}

type Client struct {
	Deliveries <-chan amqp.Delivery
	// Closed receives once for each of the two channels when it shuts
	// down, with a nil error on a clean close.
	Closed      <-chan *amqp.Error
	config      Config
	reqConn     *amqp.Connection
	respConn    *amqp.Connection
	respChannel *amqp.Channel
	log         *zerolog.Logger
}

func ReadConfig() (Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	return config, err
}

// NewClient consumes the training queue and opens a separate connection
// for publishing results.
func NewClient() (*Client, error) {
	log := logger.NewLogger("RMQ client")
	config, err := ReadConfig()
	if err != nil {
		log.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	url := getURL(config)
	respConn, respChannel, err := setup(url)
	if err != nil {
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	reqConn, reqChannel, err := setup(url)
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("failed connection: %w", err)
	}

	if err := reqChannel.ExchangeDeclare(config.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	for _, queue := range []string{config.TrainingQueue, config.ResultQueue} {
		if _, err := reqChannel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare %s: %w", queue, err)
		}
		if err := reqChannel.QueueBind(queue, queue, config.Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("bind %s: %w", queue, err)
		}
	}
	// training is CPU bound, so only a few jobs are taken at a time
	if err := reqChannel.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}

	deliveries, err := reqChannel.Consume(
		config.TrainingQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	closed := make(chan *amqp.Error, 2)
	for _, ch := range []*amqp.Channel{reqChannel, respChannel} {
		notify := ch.NotifyClose(make(chan *amqp.Error, 1))
		go func() {
			closed <- <-notify
		}()
	}

	log.Info().Str("queue", config.TrainingQueue).Msg("Consuming training jobs")
	return &Client{
		Deliveries:  deliveries,
		Closed:      closed,
		config:      config,
		reqConn:     reqConn,
		respConn:    respConn,
		respChannel: respChannel,
		log:         &log,
	}, nil
}

// PublishResult sends msg to the result queue.
func (c *Client) PublishResult(msg amqp.Publishing) error {
	return c.respChannel.Publish(
		c.config.Exchange,
		c.config.ResultQueue,
		false,
		false,
		msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func getURL(config Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
