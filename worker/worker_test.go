package worker

import (
	"context"
	"reflect"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/require"

	"github.com/jgreitemann/svm/archive"
	"github.com/jgreitemann/svm/logger"
)

const validMessage = `{"job_id": "42", "dataset_key": "jobs/42.json", "model_name": "steps"}`

const validJob = `{
	"dim": 1,
	"kernel": {"kind": "linear"},
	"parameters": {"machine": "c_svc", "regularization": 10, "cache_size": 10, "eps": 0.001, "shrinking": true},
	"samples": [
		{"x": [0], "label": -1}, {"x": [1], "label": -1}, {"x": [2], "label": -1},
		{"x": [3], "label": 1}, {"x": [4], "label": 1}, {"x": [5], "label": 1}
	]
}`

type mockedClientsConfig struct {
	rmqMockConfig
	registryMockConfig
	s3MockConfig
	trainerMockConfig
	body string
}

type mockedClients struct {
	registry *registryMock
	rmq      *rmqMock
	s3       *s3Mock
	trainer  *trainerMock
}

type methodsCalls struct {
	registry registryMockCalls
	rmq      rmqMockCalls
	s3       s3MockCalls
	trainer  trainerCall
}

func testConfiguration(t *testing.T, config mockedClientsConfig, expectedCalls methodsCalls) *mockedClients {
	worker, mocks := configureWorker(config)
	body := config.body
	if body == "" {
		body = validMessage
	}
	worker.processMessage(&amqp.Delivery{
		Body: []byte(body),
	})
	calls := methodsCalls{
		registry: mocks.registry.calls,
		rmq:      mocks.rmq.calls,
		s3:       mocks.s3.calls,
		trainer:  mocks.trainer.calls,
	}
	if !reflect.DeepEqual(calls, expectedCalls) {
		t.Errorf("Got unexpected called methods set.\nExpected:\n%+v\nGot:\n%+v", expectedCalls, calls)
	}
	return mocks
}

func configureWorker(config mockedClientsConfig) (*Worker, *mockedClients) {
	registry := &registryMock{config: config.registryMockConfig}
	s3 := &s3Mock{config: config.s3MockConfig}
	rmq := &rmqMock{config: config.rmqMockConfig}
	trainer := &trainerMock{config: config.trainerMockConfig}

	log := logger.NewLogger("Test Worker")

	return &Worker{
			config:   Config{SnapshotFormat: "yaml"},
			registry: registry,
			s3:       s3,
			rmq:      rmq,
			log:      &log,
			train:    trainer.train,
		}, &mockedClients{
			registry: registry,
			rmq:      rmq,
			s3:       s3,
			trainer:  trainer,
		}
}

func TestWorker(t *testing.T) {
	t.Run("Successful", testSuccessfulTask)
	t.Run("Malformed message", testMalformedMessage)
	t.Run("Message without model name", testIncompleteMessage)
	t.Run("Training job missing", testMissingJob)
	t.Run("Failed to load job from S3", testFailedToFetchFromS3)
	t.Run("Malformed training job", testMalformedJob)
	t.Run("Failed due to training error", testTrainingError)
	t.Run("Failed to store model in registry", testFailedToStore)
	t.Run("Failed to archive snapshot", testFailedToArchive)
	t.Run("Failed to send result", testFailedSendResult)
	t.Run("Failed to acknowledge delivery", testFailedAckDelivery)
}

func successfulCalls() methodsCalls {
	return methodsCalls{
		registry: registryMockCalls{storeModel: true},
		rmq:      rmqMockCalls{sendResult: true, acknowledgeDelivery: true},
		s3:       s3MockCalls{getTrainingJob: true, archiveModel: true},
		trainer:  trainerCall{true},
	}
}

// failedJobCalls is a job that cannot be trained: a failure result is sent
// and the delivery acknowledged.
func failedJobCalls(trained bool) methodsCalls {
	return methodsCalls{
		rmq:     rmqMockCalls{sendResult: true, acknowledgeDelivery: true},
		s3:      s3MockCalls{getTrainingJob: true},
		trainer: trainerCall{trained},
	}
}

func testSuccessfulTask(t *testing.T) {
	mocks := testConfiguration(t, mockedClientsConfig{}, successfulCalls())
	result := mocks.rmq.result
	require.Equal(t, StatusSucceeded, result.Status)
	require.Equal(t, "42", result.JobID)
	require.Equal(t, "steps", result.ModelName)
	require.Equal(t, "models/steps.yaml", result.SnapshotKey)
	require.Equal(t, 2, result.Classes)
	require.Len(t, result.SupportVectors, 2)
	require.Empty(t, result.Error)
	require.NotNil(t, result.CompletedAt)
}

func testMalformedMessage(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{body: "not json"},
		methodsCalls{rmq: rmqMockCalls{rejectDelivery: true}},
	)
}

func testIncompleteMessage(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{body: `{"job_id": "42", "dataset_key": "jobs/42.json"}`},
		methodsCalls{rmq: rmqMockCalls{rejectDelivery: true}},
	)
}

func testMissingJob(t *testing.T) {
	mocks := testConfiguration(
		t,
		mockedClientsConfig{
			s3MockConfig: s3MockConfig{getTrainingJob: withValue{returnedValue: archive.ErrNotFound}},
		},
		failedJobCalls(false),
	)
	require.Equal(t, StatusFailed, mocks.rmq.result.Status)
	require.Contains(t, mocks.rmq.result.Error, "not found")
}

func testFailedToFetchFromS3(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			s3MockConfig: s3MockConfig{getTrainingJob: withValue{fail: true}},
		},
		methodsCalls{
			rmq: rmqMockCalls{rejectDelivery: true},
			s3:  s3MockCalls{getTrainingJob: true},
		},
	)
}

func testMalformedJob(t *testing.T) {
	mocks := testConfiguration(
		t,
		mockedClientsConfig{
			s3MockConfig: s3MockConfig{getTrainingJob: withValue{returnedValue: []byte(`{"dim": 0}`)}},
		},
		failedJobCalls(false),
	)
	require.Equal(t, StatusFailed, mocks.rmq.result.Status)
}

func testTrainingError(t *testing.T) {
	mocks := testConfiguration(
		t,
		mockedClientsConfig{trainerMockConfig: trainerMockConfig{fail: true}},
		failedJobCalls(true),
	)
	require.Equal(t, StatusFailed, mocks.rmq.result.Status)
	require.Equal(t, "model: invalid parameters: C <= 0", mocks.rmq.result.Error)
}

func testFailedToStore(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			registryMockConfig: registryMockConfig{storeModel: failingMethod{true}},
		},
		methodsCalls{
			registry: registryMockCalls{storeModel: true},
			rmq:      rmqMockCalls{rejectDelivery: true},
			s3:       s3MockCalls{getTrainingJob: true},
			trainer:  trainerCall{true},
		},
	)
}

func testFailedToArchive(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			s3MockConfig: s3MockConfig{archiveModel: failingMethod{true}},
		},
		methodsCalls{
			registry: registryMockCalls{storeModel: true},
			rmq:      rmqMockCalls{rejectDelivery: true},
			s3:       s3MockCalls{getTrainingJob: true, archiveModel: true},
			trainer:  trainerCall{true},
		},
	)
}

func testFailedSendResult(t *testing.T) {
	calls := successfulCalls()
	calls.rmq = rmqMockCalls{sendResult: true, rejectDelivery: true}
	testConfiguration(
		t,
		mockedClientsConfig{
			rmqMockConfig: rmqMockConfig{sendResult: failingMethod{true}},
		},
		calls,
	)
}

func testFailedAckDelivery(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			rmqMockConfig: rmqMockConfig{acknowledgeDelivery: failingMethod{true}},
		},
		successfulCalls(),
	)
}

func TestRun(t *testing.T) {
	t.Run("Trains deliveries until stopped", testRunUntilStopped)
	t.Run("Reconnects after losing the broker", testRunReconnects)
	t.Run("Fails when the broker cannot be reached", testRunReconnectFails)
}

func testRunUntilStopped(t *testing.T) {
	worker, mocks := configureWorker(mockedClientsConfig{})
	mocks.rmq.deliveryCh = make(chan amqp.Delivery)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- worker.Run(ctx) }()

	mocks.rmq.deliveryCh <- amqp.Delivery{Body: []byte(validMessage)}
	cancel()
	require.NoError(t, <-done)

	// Run waits for the job before closing the clients
	expected := successfulCalls()
	expected.registry.close = true
	expected.s3.close = true
	expected.rmq.close = true
	calls := methodsCalls{
		registry: mocks.registry.calls,
		rmq:      mocks.rmq.calls,
		s3:       mocks.s3.calls,
		trainer:  mocks.trainer.calls,
	}
	require.Equal(t, expected, calls)
	require.Equal(t, StatusSucceeded, mocks.rmq.result.Status)
}

func testRunReconnects(t *testing.T) {
	worker, mocks := configureWorker(mockedClientsConfig{})
	mocks.rmq.closedCh = make(chan *amqp.Error)
	fresh := &rmqMock{}
	dialer := &dialerMock{clients: []*rmqMock{fresh}}
	worker.dial = dialer.dial
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- worker.Run(ctx) }()

	mocks.rmq.closedCh <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "broker restart"}
	cancel()
	require.NoError(t, <-done)

	require.Equal(t, 1, dialer.dials)
	require.True(t, mocks.rmq.calls.close)
	require.True(t, fresh.calls.close)
}

func testRunReconnectFails(t *testing.T) {
	worker, mocks := configureWorker(mockedClientsConfig{})
	mocks.rmq.deliveryCh = make(chan amqp.Delivery)
	dialer := &dialerMock{}
	worker.dial = dialer.dial
	close(mocks.rmq.deliveryCh)

	err := worker.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "reconnect to broker")
	require.Equal(t, 1, dialer.dials)
	// the old client is still the current one and gets closed on exit
	require.True(t, mocks.rmq.calls.close)
	require.True(t, mocks.registry.calls.close)
}
