package prediction

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/Alias1177/fxsignal/internal/fault"
	"github.com/Alias1177/fxsignal/models"
)

// Model is a standardized logistic classifier. The probability of an up
// move is sigmoid(bias + sum(w_i * (x_i - mean_i) / scale_i)).
type Model struct {
	Version  string    `json:"version"`
	Features []string  `json:"features"`
	Weights  []float64 `json:"weights"`
	Bias     float64   `json:"bias"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`

	// Probabilities within Neutral of 0.5 predict no direction
	Neutral float64 `json:"neutral"`
}

// LoadModel reads a model from a JSON file
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.E(fault.PredictorUnavailable, "prediction.LoadModel", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fault.E(fault.PredictorUnavailable, "prediction.LoadModel", fmt.Errorf("decode %s: %w", path, err))
	}
	if err := m.check(); err != nil {
		return nil, fault.E(fault.PredictorUnavailable, "prediction.LoadModel", err)
	}
	return &m, nil
}

func (m *Model) check() error {
	n := len(m.Weights)
	if n == 0 {
		return fmt.Errorf("model has no weights")
	}
	if len(m.Mean) != 0 && len(m.Mean) != n {
		return fmt.Errorf("mean has %d entries, want %d", len(m.Mean), n)
	}
	if len(m.Scale) != 0 && len(m.Scale) != n {
		return fmt.Errorf("scale has %d entries, want %d", len(m.Scale), n)
	}
	return nil
}

// Probability returns P(up) for a feature vector
func (m *Model) Probability(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, fault.E(fault.Computation, "prediction.Probability",
			fmt.Errorf("got %d features, model expects %d", len(features), len(m.Weights)))
	}

	z := m.Bias
	for i, x := range features {
		if len(m.Mean) > 0 {
			x -= m.Mean[i]
		}
		if len(m.Scale) > 0 && m.Scale[i] != 0 {
			x /= m.Scale[i]
		}
		z += m.Weights[i] * x
	}

	p := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p) {
		return 0, fault.E(fault.Computation, "prediction.Probability", fmt.Errorf("probability is NaN"))
	}
	return p, nil
}

// Predict classifies a feature vector
func (m *Model) Predict(features []float64) (models.MLPrediction, error) {
	p, err := m.Probability(features)
	if err != nil {
		return models.NeutralPrediction(), err
	}

	pred := models.MLPrediction{Confidence: math.Max(p, 1-p) * 100}
	switch {
	case p > 0.5+m.Neutral:
		pred.Direction = 1
	case p < 0.5-m.Neutral:
		pred.Direction = -1
	}
	return pred, nil
}
