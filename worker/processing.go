package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/jgreitemann/svm/archive"
	"github.com/jgreitemann/svm/model"
)

// Message asks for the job stored under DatasetKey to be trained and the
// result registered as ModelName.
type Message struct {
	JobID      string `json:"job_id"`
	DatasetKey string `json:"dataset_key"`
	ModelName  string `json:"model_name"`
	Sender     string `json:"sender"`
	Version    string `json:"version"`
}

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result is published once a job is done, successfully or not.
type Result struct {
	JobID          string  `json:"job_id"`
	ModelName      string  `json:"model_name"`
	Status         Status  `json:"status"`
	SnapshotKey    string  `json:"snapshot_key,omitempty"`
	Classes        int     `json:"classes,omitempty"`
	SupportVectors []int   `json:"support_vectors,omitempty"`
	Error          string  `json:"error,omitempty"`
	Sender         string  `json:"sender"`
	CompletedAt    *string `json:"completed_at"`
}

type Task struct {
	delivery *amqp.Delivery
	message  *Message
	log      *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.log.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.log.Err(err).
			Str("message_id", delivery.MessageId).
			Str("body", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	result, err := worker.processTask(task)
	if err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.sendResult(task, result); err != nil {
		task.log.Err(err).Msg("Got error while sending result message")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.log.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.log.Info().Str("status", string(result.Status)).Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	if message.DatasetKey == "" || message.ModelName == "" {
		return nil, errors.New("message lacks dataset key or model name")
	}
	taskLogger := worker.log.With().
		Str("job_id", message.JobID).
		Str("model", message.ModelName).
		Logger()
	return &Task{
		delivery: delivery,
		message:  &message,
		log:      &taskLogger,
	}, nil
}

// processTask returns an error only for failures worth retrying. Jobs that
// cannot be trained produce a failed Result instead.
func (worker *Worker) processTask(task *Task) (Result, error) {
	ctx := context.Background()

	data, err := worker.s3.getTrainingJob(ctx, task)
	if errors.Is(err, archive.ErrNotFound) {
		task.log.Err(err).Msg("Training job does not exist")
		return failedResult(task, err), nil
	}
	if err != nil {
		task.log.Err(err).Caller().Msg("Could not fetch training job from s3")
		return Result{}, fmt.Errorf("failed fetch training job from s3: %w", err)
	}

	job, err := decodeJob(data)
	if err != nil {
		task.log.Err(err).Msg("Could not decode training job")
		return failedResult(task, err), nil
	}
	task.log.Info().Int("samples", len(job.Samples)).Str("kernel", job.Kernel.Kind).Msg("Training model")
	m, err := worker.train(job)
	if err != nil {
		task.log.Err(err).Msg("Got error while training model")
		return failedResult(task, err), nil
	}
	defer m.Close()

	if err = worker.registry.storeModel(ctx, task, m); err != nil {
		task.log.Err(err).Msg("Got error while storing model in registry")
		return Result{}, err
	}
	key, err := worker.s3.archiveModel(ctx, task, m)
	if err != nil {
		task.log.Err(err).Msg("Got error while archiving model snapshot")
		return Result{}, err
	}
	return Result{
		JobID:          task.message.JobID,
		ModelName:      task.message.ModelName,
		Status:         StatusSucceeded,
		SnapshotKey:    key,
		Classes:        m.NrLabels(),
		SupportVectors: m.SupportVectorCounts(),
		CompletedAt:    getFormattedNow(),
	}, nil
}

func failedResult(task *Task, err error) Result {
	return Result{
		JobID:       task.message.JobID,
		ModelName:   task.message.ModelName,
		Status:      StatusFailed,
		Error:       err.Error(),
		CompletedAt: getFormattedNow(),
	}
}

type trainFunc func(job *Job) (*model.Model[float64], error)
