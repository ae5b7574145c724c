package worker

import (
	"context"

	"github.com/jgreitemann/svm/archive"
	"github.com/jgreitemann/svm/model"
	"github.com/jgreitemann/svm/serialization"
)

type s3Transactions interface {
	getTrainingJob(ctx context.Context, task *Task) ([]byte, error)
	archiveModel(ctx context.Context, task *Task, m *model.Model[float64]) (string, error)
	close()
}

type s3ClientWrapper struct {
	s3Client *archive.Client
	format   serialization.Format
}

func (wrapper *s3ClientWrapper) close() {}

func (wrapper *s3ClientWrapper) getTrainingJob(ctx context.Context, task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(ctx, task.message.DatasetKey)
}

func (wrapper *s3ClientWrapper) archiveModel(ctx context.Context, task *Task, m *model.Model[float64]) (string, error) {
	if err := archive.SaveModel(ctx, wrapper.s3Client, task.message.ModelName, m, wrapper.format); err != nil {
		return "", err
	}
	return archive.SnapshotKey(task.message.ModelName, wrapper.format), nil
}
