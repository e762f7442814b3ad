package session

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AuthError is what SignUp and SignIn hand back instead of failing loudly.
// Status is zero when the request never reached the server.
type AuthError struct {
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// errorEnvelope is the server's error body
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

// decodeAuthError turns a non-2xx body into an AuthError, falling back to
// the status text when the body is not an error envelope.
func decodeAuthError(status int, body []byte) *AuthError {
	authErr := &AuthError{Status: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		authErr.Code = env.Error.Code
		authErr.Message = env.Error.Message
		authErr.Field = env.Error.Field
	}
	if authErr.Message == "" {
		authErr.Message = http.StatusText(status)
	}
	return authErr
}

func transportError(err error) *AuthError {
	return &AuthError{Message: err.Error()}
}
