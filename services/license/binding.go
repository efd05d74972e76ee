package license

import "slices"

// Decision is the outcome of presenting a device to a key's bound set.
type Decision int

const (
	AlreadyBound Decision = iota + 1
	Append
	Reject
)

func (d Decision) String() string {
	switch d {
	case AlreadyBound:
		return "already_bound"
	case Append:
		return "append"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Decide applies the device ceiling. A device that is already bound is always
// accepted, even if the ceiling was lowered after it was bound.
func Decide(bound []string, device string, maxDevices int) Decision {
	if slices.Contains(bound, device) {
		return AlreadyBound
	}
	if len(bound) < maxDevices {
		return Append
	}
	return Reject
}
