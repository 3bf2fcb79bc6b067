package lookahead

import "fmt"

// ResolveErrorKind names why Resolve rejected a timestamp outright, before
// any cache lookup runs.
type ResolveErrorKind int

const (
	_ ResolveErrorKind = iota
	BeforeGenesis
	TooOld
	TooNew
)

func (k ResolveErrorKind) String() string {
	switch k {
	case BeforeGenesis:
		return "BeforeGenesis"
	case TooOld:
		return "TooOld"
	case TooNew:
		return "TooNew"
	default:
		return "Unknown"
	}
}

// ResolveError wraps a ResolveErrorKind with the timestamp that triggered it.
type ResolveError struct {
	Kind      ResolveErrorKind
	Timestamp uint64
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("lookahead resolve rejected (%s): timestamp %d", e.Kind, e.Timestamp)
}

// ErrEpochNotSynthesizable is returned when the current-epoch cache entry
// is missing and the epoch hasn't started yet, so no snapshot can be taken.
type ErrEpochNotSynthesizable struct {
	EpochStart uint64
}

func (e *ErrEpochNotSynthesizable) Error() string {
	return fmt.Sprintf("lookahead epoch %d has no cache entry and has not started", e.EpochStart)
}
