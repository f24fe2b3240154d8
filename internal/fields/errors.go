package fields

import "errors"

// Sentinel errors shared by the field stores. Controllers map these to
// 400/409/404; anything else is a 500 with the message passed through.
var (
	ErrInvalid  = errors.New("invalid field definition")
	ErrConflict = errors.New("field name already exists in this scope")
	ErrNotFound = errors.New("not found")
)
