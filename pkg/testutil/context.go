package testutil

import (
	"net/http"
	"time"

	"riskprofile/pkg/requestcontext"
)

// WithRequestTime pins the evaluation time the way the requesttime
// middleware would.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID sets the correlation ID the metadata middleware would set.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
