package worker

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/jgreitemann/svm/model"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type registryMock struct {
	config registryMockConfig
	calls  registryMockCalls
}

type registryMockConfig struct {
	storeModel failingMethod
}

type registryMockCalls struct {
	storeModel bool
	close      bool
}

type rmqMock struct {
	config     rmqMockConfig
	calls      rmqMockCalls
	result     Result
	deliveryCh chan amqp.Delivery
	closedCh   chan *amqp.Error
}

type rmqMockConfig struct {
	sendResult          failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	sendResult          bool
	acknowledgeDelivery bool
	rejectDelivery      bool
	close               bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
}

type s3MockConfig struct {
	getTrainingJob withValue
	archiveModel   failingMethod
}

type s3MockCalls struct {
	getTrainingJob bool
	archiveModel   bool
	close          bool
}

type trainerMock struct {
	config trainerMockConfig
	calls  trainerCall
}

type trainerMockConfig struct {
	fail bool
}

type trainerCall struct {
	train bool
}

func (mock *s3Mock) close() {
	mock.calls.close = true
}

func (mock *rmqMock) close() {
	mock.calls.close = true
}

func (mock *registryMock) close() {
	mock.calls.close = true
}

func (mock *trainerMock) train(job *Job) (*model.Model[float64], error) {
	mock.calls.train = true
	if mock.config.fail {
		return nil, errors.New("model: invalid parameters: C <= 0")
	}
	return trainJob(job)
}

func (mock *registryMock) storeModel(ctx context.Context, task *Task, m *model.Model[float64]) error {
	mock.calls.storeModel = true
	if mock.config.storeModel.fail {
		return errors.New("failed to store model")
	}
	return nil
}

func (mock *s3Mock) getTrainingJob(ctx context.Context, task *Task) ([]byte, error) {
	mock.calls.getTrainingJob = true
	if mock.config.getTrainingJob.fail {
		return nil, errors.New("failed to download training job")
	}
	switch v := mock.config.getTrainingJob.returnedValue.(type) {
	case error:
		return nil, v
	case []byte:
		return v, nil
	default:
		return []byte(validJob), nil
	}
}

func (mock *s3Mock) archiveModel(ctx context.Context, task *Task, m *model.Model[float64]) (string, error) {
	mock.calls.archiveModel = true
	if mock.config.archiveModel.fail {
		return "", errors.New("failed to archive model")
	}
	return "models/" + task.message.ModelName + ".yaml", nil
}

func (mock *rmqMock) sendResult(task *Task, result Result) error {
	mock.calls.sendResult = true
	mock.result = result
	if mock.config.sendResult.fail {
		return errors.New("failed to send result")
	}
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, log *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}

func (mock *rmqMock) deliveries() <-chan amqp.Delivery {
	return mock.deliveryCh
}

func (mock *rmqMock) closed() <-chan *amqp.Error {
	return mock.closedCh
}

// dialerMock hands out the given broker clients in order.
type dialerMock struct {
	clients []*rmqMock
	dials   int
}

func (mock *dialerMock) dial() (rmqTransactions, error) {
	mock.dials++
	if len(mock.clients) == 0 {
		return nil, errors.New("connection refused")
	}
	client := mock.clients[0]
	mock.clients = mock.clients[1:]
	return client, nil
}
