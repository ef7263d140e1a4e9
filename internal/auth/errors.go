package auth

import "errors"

var (
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")
	ErrUnauthorized  = errors.New("auth: unauthorized")
)

// ErrInvalidToken indicates the token failed validation.
var ErrInvalidToken = errors.New("invalid token")

// Login failure codes. Handlers translate codes to user-facing text through
// loginMessages instead of rewriting provider error strings.
const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeAccountDisabled    = "account_disabled"
)

var loginMessages = map[string]string{
	CodeInvalidCredentials: "Invalid email or password.",
	CodeAccountDisabled:    "This account has been disabled. Contact an administrator.",
}

// LoginError carries a stable machine code alongside the sentinel.
type LoginError struct {
	Code string
}

func (e *LoginError) Error() string {
	if msg, ok := loginMessages[e.Code]; ok {
		return msg
	}
	return "Unable to sign in."
}

func (e *LoginError) Unwrap() error { return ErrUnauthorized }
