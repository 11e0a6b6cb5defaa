package driven

import "time"

// Metrics records pipeline outcomes.
type Metrics interface {
	// ObserveRequest records one finished request with its terminal state.
	ObserveRequest(outcome string, duration time.Duration)

	// ObserveFallback records a switch to the fallback model.
	ObserveFallback(step string)

	// ObserveModelCall records one model invocation.
	ObserveModelCall(model, step string, err error)
}
