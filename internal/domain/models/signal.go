package models

import (
	"fmt"
	"time"
)

// Signal is the six-level trading label derived from a composite probability.
type Signal int

const (
	SignalStrongSell Signal = iota
	SignalSell
	SignalWeakSell
	SignalWeakBuy
	SignalBuy
	SignalStrongBuy
)

// AllSignals lists the signals from most bullish to most bearish.
var AllSignals = []Signal{SignalStrongBuy, SignalBuy, SignalWeakBuy, SignalWeakSell, SignalSell, SignalStrongSell}

var signalNames = map[Signal]string{
	SignalStrongBuy:  "strong-buy",
	SignalBuy:        "buy",
	SignalWeakBuy:    "weak-buy",
	SignalWeakSell:   "weak-sell",
	SignalSell:       "sell",
	SignalStrongSell: "strong-sell",
}

// SignalFor maps a composite probability to its signal.
func SignalFor(p float64) Signal {
	switch {
	case p >= 0.70:
		return SignalStrongBuy
	case p >= 0.60:
		return SignalBuy
	case p >= 0.50:
		return SignalWeakBuy
	case p >= 0.40:
		return SignalWeakSell
	case p >= 0.30:
		return SignalSell
	default:
		return SignalStrongSell
	}
}

func (s Signal) String() string {
	if n, ok := signalNames[s]; ok {
		return n
	}
	return fmt.Sprintf("signal(%d)", int(s))
}

// Bullish reports whether the signal calls an up-day.
func (s Signal) Bullish() bool { return s >= SignalWeakBuy }

func (s Signal) MarshalText() ([]byte, error) {
	n, ok := signalNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown signal %d", int(s))
	}
	return []byte(n), nil
}

func (s *Signal) UnmarshalText(b []byte) error {
	for k, n := range signalNames {
		if n == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown signal %q", string(b))
}

// Contribution is one factor's share of a composite.
type Contribution struct {
	Factor       Factor  `json:"factor"`
	Probability  float64 `json:"probability"`
	Defined      bool    `json:"defined"`
	Samples      int     `json:"samples"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// CompositePrediction is the weighted blend of the four factors for one date.
type CompositePrediction struct {
	TradeDate     time.Time      `json:"trade_date"`
	Factors       []Contribution `json:"factors"`
	Composite     float64        `json:"composite"`
	Signal        Signal         `json:"signal"`
	WeightsAsOf   *time.Time     `json:"weights_as_of,omitempty"`
	WeightsSource WeightSource   `json:"weights_source"`
}

// Probability returns the probability used for f.
func (c CompositePrediction) Probability(f Factor) float64 {
	for _, ct := range c.Factors {
		if ct.Factor == f {
			return ct.Probability
		}
	}
	return NeutralProbability
}
