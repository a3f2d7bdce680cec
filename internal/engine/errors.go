// internal/engine/errors.go
package engine

import "errors"

// Error kinds. Every failure is returned to the caller of the operation that
// detected it; nothing is retried and nothing is fatal.
//
// Registration and rotation errors wrap the detailed cause, so both
// errors.Is(err, ErrInvalidRegistration) and
// errors.Is(err, registry.ErrNullLocation) hold.
var (
	ErrNotInitialized      = errors.New("ums: engine not initialized")
	ErrAlreadyInitialized  = errors.New("ums: engine already initialized")
	ErrNullArgument        = errors.New("ums: required argument missing")
	ErrInvalidConfig       = errors.New("ums: invalid configuration")
	ErrInvalidRegistration = errors.New("ums: invalid channel registration")
	ErrCapacityExceeded    = errors.New("ums: channel capacity exceeded")
	ErrRange               = errors.New("ums: no channels registered")
	ErrTransmitterBusy     = errors.New("ums: transmitter busy")
)
