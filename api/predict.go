// Package api serves predictions of registered models over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/label"
	"github.com/jgreitemann/svm/logger"
	"github.com/jgreitemann/svm/model"
	"github.com/jgreitemann/svm/problem"
	"github.com/jgreitemann/svm/registry"
)

var apiLogger = logger.NewLogger("API")

type requestFields struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Remote string `json:"remote"`
}

func requestLogger(r *http.Request) zerolog.Logger {
	return apiLogger.With().
		Interface("request_info", requestFields{Method: r.Method, Path: r.URL.Path, Remote: r.RemoteAddr}).
		Logger()
}

// ModelSource looks up trained models by name. The caller closes the
// returned model.
type ModelSource interface {
	Model(ctx context.Context, name string) (*model.Model[float64], error)
}

// RegistrySource loads models from the registry, rebuilding the kernel from
// the stored description.
type RegistrySource struct {
	Registry *registry.Registry
}

func (s RegistrySource) Model(ctx context.Context, name string) (*model.Model[float64], error) {
	return registry.Get[float64](ctx, s.Registry, name, label.Real(), nil)
}

type PredictRequest struct {
	Model string    `json:"model"`
	X     []float64 `json:"x"`
}

// Decision is the value of one pairwise classifier, positive in favor of
// the first label.
type Decision struct {
	Labels [2]float64 `json:"labels"`
	Value  float64    `json:"value"`
}

type PredictResponse struct {
	Model     string     `json:"model"`
	Label     float64    `json:"label"`
	Decisions []Decision `json:"decisions"`
}

type Request struct {
	Models ModelSource
}

func (req *Request) Predict(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	reqLogger := requestLogger(r)

	if r.Method != "POST" {
		reqLogger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		reqLogger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}
	var body PredictRequest
	if err := json.Unmarshal(msg, &body); err != nil || body.Model == "" {
		reqLogger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not parse prediction request")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	m, err := req.Models.Model(r.Context(), body.Model)
	if errors.Is(err, registry.ErrNotFound) {
		reqLogger.Err(err).Int("status", http.StatusNotFound).Str("model", body.Model).Msg("Unknown model")
		http.Error(w, "", http.StatusNotFound)
		return
	}
	if err != nil {
		reqLogger.Err(err).Int("status", http.StatusInternalServerError).Str("model", body.Model).Msg("Could not load model")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer m.Close()

	predicted, dec, err := m.Evaluate(dataset.New(body.X).View())
	if errors.Is(err, problem.ErrDimensionMismatch) {
		reqLogger.Err(err).Int("status", http.StatusUnprocessableEntity).Msg("Query does not fit the model")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		reqLogger.Err(err).Int("status", http.StatusInternalServerError).Msg("Prediction failed")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	resp := PredictResponse{Model: body.Model, Label: predicted}
	for i, c := range m.Classifiers() {
		a, b := c.Labels()
		resp.Decisions = append(resp.Decisions, Decision{Labels: [2]float64{a, b}, Value: dec[i]})
	}
	out, err := json.Marshal(resp)
	if err != nil {
		reqLogger.Err(err).Int("status", http.StatusInternalServerError).Msg("Could not encode response")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(out)
	reqLogger.Info().Int("status", http.StatusOK).Str("model", body.Model).Msg("Finished processing request")
}
