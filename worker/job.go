package worker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/label"
	"github.com/jgreitemann/svm/model"
	"github.com/jgreitemann/svm/params"
	"github.com/jgreitemann/svm/problem"
	"github.com/jgreitemann/svm/utils"
)

var ErrInvalidJob = errors.New("worker: invalid training job")

// Job is the training data and configuration stored under a message's
// dataset key. Labels are plain numbers.
type Job struct {
	Dim        int                `json:"dim"`
	Kernel     kernel.Description `json:"kernel"`
	Parameters *params.Parameters `json:"parameters,omitempty"`
	Samples    []JobSample        `json:"samples"`
}

type JobSample struct {
	X     []float64 `json:"x"`
	Label float64   `json:"label"`
}

func decodeJob(data []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if job.Dim <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalidJob, job.Dim)
	}
	if len(job.Samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInvalidJob)
	}
	return &job, nil
}

// trainJob builds the problem described by job and trains on it. Missing
// parameters fall back to params.Default.
func trainJob(job *Job) (m *model.Model[float64], err error) {
	defer utils.RecoverWithError(&err)

	k, err := job.Kernel.Kernel()
	if err != nil {
		return nil, err
	}
	p := params.Default()
	if job.Parameters != nil {
		p = *job.Parameters
	}

	prob := problem.New(job.Dim, label.Real())
	for i, s := range job.Samples {
		if err := prob.AddSample(dataset.New(s.X), s.Label); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return model.Train(prob, k, p)
}
