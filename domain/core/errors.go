package core

import "errors"

// ErrInvalidToken is returned for tokens that cannot be used in a request path.
var ErrInvalidToken = errors.New("invalid token")
