package worker

import (
	"context"

	"github.com/jgreitemann/svm/model"
	"github.com/jgreitemann/svm/registry"
)

type registryTransactions interface {
	storeModel(ctx context.Context, task *Task, m *model.Model[float64]) error
	close()
}

type registryClientWrapper struct {
	registry *registry.Registry
}

func (wrapper *registryClientWrapper) close() {
	_ = wrapper.registry.Close()
}

func (wrapper *registryClientWrapper) storeModel(ctx context.Context, task *Task, m *model.Model[float64]) error {
	return registry.Put(ctx, wrapper.registry, task.message.ModelName, m)
}
