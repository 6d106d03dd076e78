package transport

import "net/http"

// TokenSource yields the bearer token to attach, or "" when anonymous.
type TokenSource interface {
	AccessToken() string
}

// UnauthorizedHandler is told about every 401 response.
type UnauthorizedHandler interface {
	HandleUnauthorized()
}

// Bearer attaches "Authorization: Bearer <token>" when a token is stored.
// A request that already carries an Authorization header is left alone.
func Bearer(tokens TokenSource) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Authorization") == "" {
				if token := tokens.AccessToken(); token != "" {
					req = req.Clone(req.Context())
					req.Header.Set("Authorization", "Bearer "+token)
				}
			}
			return next.Do(req)
		})
	}
}

// Unauthorized reports 401 responses to h. The response is still returned
// to the caller so the error surfaces once.
func Unauthorized(h UnauthorizedHandler) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err == nil && resp.StatusCode == http.StatusUnauthorized {
				h.HandleUnauthorized()
			}
			return resp, err
		})
	}
}
