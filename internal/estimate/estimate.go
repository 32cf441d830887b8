// Package estimate implements the local statistical estimators behind the
// analytics tasks: spending forecast, anomaly detection and savings planning.
// They run inside the simulated computation gateway and serve as the fallback
// whenever a remote gateway is unreachable.
package estimate

import (
	"errors"
	"math/rand"
)

// ErrInsufficientData is returned when an estimator has no usable rows to
// work with.
var ErrInsufficientData = errors.New("insufficient data")

// DefaultSeed is the noise seed used when none is configured.
const DefaultSeed = 42

// Estimator runs the local analyses. Instances with the same seed produce
// identical forecasts for identical inputs.
type Estimator struct {
	seed int64
}

func New(seed int64) *Estimator {
	return &Estimator{seed: seed}
}

func NewDefault() *Estimator {
	return New(DefaultSeed)
}

func (e *Estimator) rng() *rand.Rand {
	return rand.New(rand.NewSource(e.seed))
}
