package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Alias1177/fxsignal/internal/analyze"
	"github.com/Alias1177/fxsignal/internal/fusion"
	"github.com/Alias1177/fxsignal/internal/session"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Bounds a TradingSignal must satisfy; the fusion parameters may not
// produce values outside them.
const (
	minSignalConfidence = 30
	maxSignalConfidence = 95
	maxSignalReasons    = 3
)

// Scoring holds the tunable constants of analysis and fusion
type Scoring struct {
	Technical analyze.Rules    `yaml:"technical"`
	Fusion    fusion.Weights   `yaml:"fusion"`
	Sessions  []session.Window `yaml:"sessions"`
}

// DefaultScoring returns the built-in parameter set
func DefaultScoring() Scoring {
	var s Scoring
	_ = defaults.Set(&s)
	s.Sessions = session.DefaultWindows()
	return s
}

// LoadScoring reads overrides from a YAML file on top of the defaults.
// An empty path returns the defaults.
func LoadScoring(path string) (Scoring, error) {
	s := DefaultScoring()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read scoring config: %w", err)
	}
	return ParseScoring(data)
}

// ParseScoring applies YAML overrides to the defaults. Unknown keys are
// an error so a misspelled parameter cannot silently keep its default.
func ParseScoring(data []byte) (Scoring, error) {
	s := DefaultScoring()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, fmt.Errorf("parse scoring config: %w", err)
	}
	if len(s.Sessions) == 0 {
		s.Sessions = session.DefaultWindows()
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate rejects parameter sets that would break signal invariants
func (s Scoring) Validate() error {
	w := s.Fusion
	if w.MinConfidence < minSignalConfidence || w.MaxConfidence > maxSignalConfidence || w.MinConfidence > w.MaxConfidence {
		return fmt.Errorf("fusion confidence bounds [%d, %d] must lie within [%d, %d]",
			w.MinConfidence, w.MaxConfidence, minSignalConfidence, maxSignalConfidence)
	}
	if w.TakeProfitATR <= 0 || w.StopLossATR <= 0 {
		return fmt.Errorf("ATR multipliers must be positive")
	}
	if w.MaxReasons < 0 || w.MaxReasons > maxSignalReasons {
		return fmt.Errorf("max_reasons must be between 0 and %d", maxSignalReasons)
	}
	if s.Technical.MinScore < 1 {
		return fmt.Errorf("technical min_score must be at least 1")
	}
	for _, win := range s.Sessions {
		if win.Open < 0 || win.Close > 24 || win.Open >= win.Close {
			return fmt.Errorf("session %q has invalid hours [%d, %d)", win.Name, win.Open, win.Close)
		}
	}
	return nil
}
