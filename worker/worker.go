// Package worker trains models for jobs arriving over RabbitMQ. Training
// data is read from the archive, the trained model is stored in the
// registry and its snapshot archived next to the data.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/jgreitemann/svm/archive"
	"github.com/jgreitemann/svm/logger"
	"github.com/jgreitemann/svm/registry"
	"github.com/jgreitemann/svm/serialization"
)

type Config struct {
	RegistryDB     int                  `envconfig:"SVM_REDIS_DB" default:"0"`
	SnapshotFormat serialization.Format `envconfig:"SVM_SNAPSHOT_FORMAT" default:"yaml"`
}

type Worker struct {
	config   Config
	registry registryTransactions
	s3       s3Transactions
	rmq      rmqTransactions
	dial     brokerDialer
	log      *zerolog.Logger
	train    trainFunc
	inflight sync.WaitGroup
}

func New() (*Worker, error) {
	log := logger.NewLogger("Worker")

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Error().Err(err).Msg("Could not read config")
		return nil, err
	}

	reg, err := registry.NewClient(registry.DB(config.RegistryDB))
	if err != nil {
		return nil, fmt.Errorf("create registry client: %w", err)
	}
	reg.UseFormat(config.SnapshotFormat)
	s3Client, err := archive.New()
	if err != nil {
		_ = reg.Close()
		return nil, fmt.Errorf("create archive client: %w", err)
	}

	worker := &Worker{
		config:   config,
		registry: &registryClientWrapper{reg},
		s3:       &s3ClientWrapper{s3Client: s3Client, format: config.SnapshotFormat},
		dial:     dialBroker,
		log:      &log,
		train:    trainJob,
	}
	if err := worker.connectBroker(); err != nil {
		worker.registry.close()
		return nil, err
	}
	return worker, nil
}

// Run trains the jobs of incoming deliveries until ctx is done, or until
// a lost broker connection cannot be re-established. Running jobs finish
// before the clients are closed.
func (worker *Worker) Run(ctx context.Context) error {
	defer worker.Close()
	for {
		select {
		case <-ctx.Done():
			worker.log.Info().Msg("Stopping, waiting for running jobs")
			return nil
		case delivery, ok := <-worker.rmq.deliveries():
			if ok {
				worker.inflight.Add(1)
				go worker.handle(delivery)
				continue
			}
			if err := worker.reconnect(nil); err != nil {
				return err
			}
		case rmqErr := <-worker.rmq.closed():
			if err := worker.reconnect(rmqErr); err != nil {
				return err
			}
		}
	}
}

func (worker *Worker) handle(delivery amqp.Delivery) {
	defer worker.inflight.Done()
	worker.processMessage(&delivery)
}

func (worker *Worker) reconnect(cause *amqp.Error) error {
	worker.log.Warn().Interface("cause", cause).Msg("Lost broker connection, reconnecting")
	if err := worker.connectBroker(); err != nil {
		return fmt.Errorf("reconnect to broker: %w", err)
	}
	return nil
}

// connectBroker replaces the broker client. Jobs still holding the old
// client fail to settle their deliveries, which the broker then redelivers.
func (worker *Worker) connectBroker() error {
	client, err := worker.dial()
	if err != nil {
		worker.log.Err(err).Msg("Failed to connect to broker")
		return err
	}
	if old := worker.rmq; old != nil {
		old.close()
	}
	worker.rmq = client
	worker.log.Info().Msg("Connected to broker")
	return nil
}

func (worker *Worker) Close() {
	worker.inflight.Wait()
	worker.registry.close()
	worker.s3.close()
	worker.rmq.close()
}
