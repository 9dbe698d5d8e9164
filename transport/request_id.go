package transport

import (
	"net/http"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags each outbound call with a unique X-Request-ID unless the caller set one.
type RequestID struct {
	next http.RoundTripper
}

var _ http.RoundTripper = (*RequestID)(nil)

func NewRequestID(next http.RoundTripper) *RequestID {
	return &RequestID{next: next}
}

func (r *RequestID) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(HeaderRequestID) != "" {
		return r.next.RoundTrip(req)
	}
	tagged := req.Clone(req.Context())
	tagged.Header.Set(HeaderRequestID, uuid.NewString())
	return r.next.RoundTrip(tagged)
}
