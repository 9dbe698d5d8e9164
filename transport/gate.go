package transport

import (
	"net/http"

	"github.com/jrsteele09/go-admin-client/integrity"
	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
)

// VerdictSource supplies the device verdict. integrity.Checker memoizes it.
type VerdictSource interface {
	Check() integrity.Verdict
}

var _ VerdictSource = (*integrity.Checker)(nil)

// Gate refuses every outbound call while the device verdict is compromised.
// A refused call never reaches the next round tripper.
type Gate struct {
	next     http.RoundTripper
	verdicts VerdictSource
	opts     options
}

var _ http.RoundTripper = (*Gate)(nil)

func NewGate(next http.RoundTripper, verdicts VerdictSource, opts ...Option) *Gate {
	return &Gate{next: next, verdicts: verdicts, opts: newOptions(opts)}
}

func (g *Gate) RoundTrip(req *http.Request) (*http.Response, error) {
	verdict := g.verdicts.Check()
	if verdict.IsCompromised() {
		closeBody(req)
		g.opts.metrics.Blocked()
		g.opts.log.Error().Str("reason", verdict.Reason()).Str("path", req.URL.Path).Msg("outbound call blocked")
		return nil, &apperrors.SecurityViolationError{Reasons: verdict.Reasons}
	}
	return g.next.RoundTrip(req)
}

// closeBody honours the RoundTripper contract of closing the body on every path
func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
