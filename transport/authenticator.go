package transport

import (
	"net/http"
	"path"
	"strings"

	"github.com/jrsteele09/go-admin-client/authapi"
	"golang.org/x/oauth2"
)

// publicPaths are sent without a bearer credential
var publicPaths = []string{authapi.PathLogin, authapi.PathRefresh}

// TokenReader returns the current access token, or "" when logged out.
type TokenReader interface {
	AccessToken() string
}

// Authenticator attaches the stored access token as a bearer credential to every
// call except login and refresh. Without a stored token the call goes out as is and
// the backend's 401 is left to the Refresher.
type Authenticator struct {
	next   http.RoundTripper
	tokens TokenReader
}

var _ http.RoundTripper = (*Authenticator)(nil)

func NewAuthenticator(next http.RoundTripper, tokens TokenReader) *Authenticator {
	return &Authenticator{next: next, tokens: tokens}
}

func (a *Authenticator) RoundTrip(req *http.Request) (*http.Response, error) {
	if IsPublicPath(req.URL.Path) {
		return a.next.RoundTrip(req)
	}
	token := a.tokens.AccessToken()
	if token == "" {
		return a.next.RoundTrip(req)
	}
	return a.next.RoundTrip(withBearer(req, token))
}

// IsPublicPath reports whether p addresses an endpoint that takes no bearer credential
func IsPublicPath(p string) bool {
	cleaned := path.Clean("/" + p)
	for _, public := range publicPaths {
		if strings.HasSuffix(cleaned, "/"+public) {
			return true
		}
	}
	return false
}

// withBearer returns a copy of req carrying token. req is not modified.
func withBearer(req *http.Request, token string) *http.Request {
	out := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(out)
	return out
}

// bearerToken returns the token req carries, or ""
func bearerToken(req *http.Request) string {
	scheme, token, ok := strings.Cut(req.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
