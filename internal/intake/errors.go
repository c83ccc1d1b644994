package intake

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks failures talking to the inbound mailbox.
	ErrSourceUnavailable = errors.New("inbound mail source unavailable")
	// ErrStoreUnavailable marks failures talking to the database.
	ErrStoreUnavailable = errors.New("backing store unavailable")
)

// PartialFanoutError reports a fan-out that failed after creating some of
// its per-group requests. Created carries the confirmed write count so the
// caller can tell "nothing happened" apart from "some requests landed
// before the failure". Already-created requests stay in place.
type PartialFanoutError struct {
	Created int
	Err     error
}

func (e *PartialFanoutError) Error() string {
	return fmt.Sprintf("fan-out failed after %d request(s): %v", e.Created, e.Err)
}

func (e *PartialFanoutError) Unwrap() error {
	return e.Err
}
