package fusion

import "github.com/creasty/defaults"

// Weights are the tunable constants of the fusion step
type Weights struct {
	PrimaryStrength       float64 `yaml:"primary_strength" default:"0.4"`
	TimeframeConfirmation float64 `yaml:"timeframe_confirmation" default:"20"`
	ML                    float64 `yaml:"ml" default:"25"`
	Sentiment             float64 `yaml:"sentiment" default:"10"`
	News                  float64 `yaml:"news" default:"5"`

	SentimentThreshold float64 `yaml:"sentiment_threshold" default:"0.2"`
	NewsThreshold      float64 `yaml:"news_threshold" default:"0.2"`

	// Total evidence below MinEvidence is rejected
	MinEvidence float64 `yaml:"min_evidence" default:"30"`

	BaseConfidenceShare   float64 `yaml:"base_confidence_share" default:"0.7"`
	FactorConfidenceShare float64 `yaml:"factor_confidence_share" default:"0.3"`
	MinConfidence         int     `yaml:"min_confidence" default:"30"`
	MaxConfidence         int     `yaml:"max_confidence" default:"95"`

	TakeProfitATR float64 `yaml:"take_profit_atr" default:"2.5"`
	StopLossATR   float64 `yaml:"stop_loss_atr" default:"1.5"`

	MaxReasons int `yaml:"max_reasons" default:"3"`
}

// DefaultWeights returns the canonical weight set
func DefaultWeights() Weights {
	var w Weights
	_ = defaults.Set(&w)
	return w
}
