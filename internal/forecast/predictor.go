package forecast

import (
	"encoding/json"
	"fmt"
	"os"
)

// Predictor turns an ordered feature vector into one predicted kWh
// value. The pipeline treats it as a black box; training lives
// elsewhere.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// LinearModel is a pretrained regression exported as intercept plus
// one coefficient per feature.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// LoadModel reads an exported model file from disk.
func LoadModel(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var model LinearModel
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	if len(model.Coefficients) != FeatureCount {
		return nil, fmt.Errorf("model has %d coefficients, want %d", len(model.Coefficients), FeatureCount)
	}
	return &model, nil
}

func (m *LinearModel) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("got %d features, want %d", len(features), len(m.Coefficients))
	}
	out := m.Intercept
	for i, f := range features {
		out += m.Coefficients[i] * f
	}
	return out, nil
}
