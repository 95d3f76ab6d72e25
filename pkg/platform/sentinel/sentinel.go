package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so callers can translate them into domain
// errors. For validation errors use pkg/domain-errors directly.
var (
	// ErrUnavailable: a backing service (Redis, Kafka) cannot be reached.
	ErrUnavailable = errors.New("unavailable")
)
