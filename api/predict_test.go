package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jgreitemann/svm/dataset"
	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/label"
	"github.com/jgreitemann/svm/model"
	"github.com/jgreitemann/svm/params"
	"github.com/jgreitemann/svm/problem"
	"github.com/jgreitemann/svm/registry"
)

type sourceMock struct {
	t      *testing.T
	loaded []string
}

func (s *sourceMock) Model(_ context.Context, name string) (*model.Model[float64], error) {
	s.loaded = append(s.loaded, name)
	if name != "halfplane" {
		return nil, registry.ErrNotFound
	}
	prob := problem.New(2, label.Real())
	xs := [][]float64{{0.3, 0.1}, {1.5, -1}, {2, 0}, {1, -2}, {-0.5, 0.5}, {-1.5, 1}, {-2, 0}, {-1, 2}}
	for i, x := range xs {
		y := 1.0
		if i >= 4 {
			y = -1
		}
		require.NoError(s.t, prob.AddSample(dataset.New(x), y))
	}
	return model.Train(prob, kernel.Linear{}, params.Default())
}

func serve(t *testing.T, method, body string) (*httptest.ResponseRecorder, *sourceMock) {
	source := &sourceMock{t: t}
	req := &Request{Models: source}
	rec := httptest.NewRecorder()
	req.Predict(rec, httptest.NewRequest(method, "/predict", strings.NewReader(body)))
	return rec, source
}

func TestPredict(t *testing.T) {
	rec, source := serve(t, http.MethodPost, `{"model": "halfplane", "x": [3, 0]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"halfplane"}, source.loaded)

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "halfplane", resp.Model)
	require.Equal(t, 1.0, resp.Label)
	require.Len(t, resp.Decisions, 1)
	require.Equal(t, [2]float64{-1, 1}, resp.Decisions[0].Labels)
	require.Less(t, resp.Decisions[0].Value, 0.0)
}

func TestPredictErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"malformed body", http.MethodPost, `{"model": `, http.StatusBadRequest},
		{"missing model name", http.MethodPost, `{"x": [1, 2]}`, http.StatusBadRequest},
		{"unknown model", http.MethodPost, `{"model": "nope", "x": [1, 2]}`, http.StatusNotFound},
		{"query too long", http.MethodPost, `{"model": "halfplane", "x": [1, 2, 3]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := serve(t, tt.method, tt.body)
			require.Equal(t, tt.status, rec.Code)
		})
	}
}
