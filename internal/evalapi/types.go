// Package evalapi exposes the objective evaluator as a small HTTP service for
// optimizer processes running out-of-process. The loaded plan bundle is
// immutable for the lifetime of the server, so concurrent evaluation requests
// share it without locking.
package evalapi

// EvaluateRequest carries one weight vector to evaluate. The vector length
// must match the loaded model's beamlet count.
type EvaluateRequest struct {
	Weights      []float64 `json:"weights"`
	WantGradient bool      `json:"want_gradient"`
}

// EvaluateResponse returns the objective value and, when requested, the
// weight-space gradient.
type EvaluateResponse struct {
	Objective     float64   `json:"objective"`
	Gradient      []float64 `json:"gradient,omitempty"`
	ElapsedMicros int64     `json:"elapsed_us"`
}

// HealthResponse describes the loaded plan.
type HealthResponse struct {
	Status     string `json:"status"`
	Voxels     int    `json:"voxels"`
	Beamlets   int    `json:"beamlets"`
	Structures int    `json:"structures"`
}

// ErrorResponse is the error envelope for non-2xx replies.
type ErrorResponse struct {
	Error string `json:"error"`
}
