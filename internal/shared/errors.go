package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrBadRequest       = fmt.Errorf("malformed token exchange request")
	ErrSessionExpired   = fmt.Errorf("user session expired")
	ErrTokenAcquisition = fmt.Errorf("failed to acquire access token")
	ErrNoVerifier       = fmt.Errorf("no code verifier stored")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrDraftNotFound      = fmt.Errorf("draft not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// HTTPError carries the status code and body text of a non-2xx provider
// response that survived the request client's single auth-triggered retry.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: status %d - %s", e.Status, e.Body)
}

// IsAuthStatus reports whether a provider status code indicates a rejected
// or expired credential.
func IsAuthStatus(status int) bool {
	return status == 401 || status == 403
}
