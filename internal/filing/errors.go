package filing

import "errors"

var (
	// ErrInvalidMessage indicates no contact email could be determined for a message
	ErrInvalidMessage = errors.New("message has no resolvable contact email")
	// ErrInvalidPath indicates an empty or malformed chosen path
	ErrInvalidPath = errors.New("invalid filing path")
)
