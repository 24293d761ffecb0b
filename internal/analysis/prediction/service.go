// Package prediction serves the ML classifier behind the Predictor contract.
package prediction

import (
	"context"

	"github.com/Alias1177/fxsignal/internal/fault"
	"github.com/Alias1177/fxsignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Service is constructed once at start-up. Without a model it stays in the
// unavailable state and answers every request with a neutral prediction.
type Service struct {
	model  *Model
	pool   *Pool
	logger zerolog.Logger
}

// NewService loads the model at path. A missing or broken model is not an
// error: the service starts unavailable.
func NewService(path string, workers int) *Service {
	logger := log.With().Str("component", "predictor").Logger()

	if path == "" {
		logger.Info().Msg("No model configured, ML evidence disabled")
		return &Service{logger: logger}
	}

	m, err := LoadModel(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Model unavailable, ML evidence disabled")
		return &Service{logger: logger}
	}

	logger.Info().Str("version", m.Version).Int("workers", workers).Msg("Model loaded")
	return NewServiceWithModel(m, workers)
}

// NewServiceWithModel wraps an already loaded model
func NewServiceWithModel(m *Model, workers int) *Service {
	s := &Service{
		model:  m,
		logger: log.With().Str("component", "predictor").Logger(),
	}
	if m != nil {
		s.pool = NewPool(m, workers)
	}
	return s
}

// Available reports whether a model is loaded
func (s *Service) Available() bool {
	return s.model != nil
}

// Predict classifies the features. Unavailable returns neutral with no error.
func (s *Service) Predict(ctx context.Context, symbol string, features []float64) (models.MLPrediction, error) {
	if !s.Available() {
		return models.NeutralPrediction(), nil
	}

	pred, err := s.pool.Submit(ctx, features)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Inference failed")
		return models.NeutralPrediction(), fault.E(fault.PredictorUnavailable, "prediction.Predict", err)
	}
	return pred, nil
}

// Close releases the worker pool
func (s *Service) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
