package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig  = fmt.Errorf("edudash: invalid config")
	ErrNotFound       = fmt.Errorf("edudash: not found")
	ErrInvalidParams  = fmt.Errorf("edudash: invalid params")
	ErrInternal       = fmt.Errorf("edudash: internal error")
	ErrInvalidRequest = fmt.Errorf("edudash: invalid request")
	ErrForbidden      = fmt.Errorf("edudash: forbidden")

	ErrNoThreadSelected = fmt.Errorf("edudash: no thread selected")
	ErrUploadInProgress = fmt.Errorf("edudash: attachment upload in progress")
	ErrEmptyMessage     = fmt.Errorf("edudash: empty message")
	ErrVirtualThread    = fmt.Errorf("edudash: operation not supported on virtual thread")
)
