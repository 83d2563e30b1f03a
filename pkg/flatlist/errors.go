package flatlist

import "fmt"

// ContractError describes a violated precondition: a position outside the
// flat list, a double subscription, a reentrant mutation. The engine panics
// with a *ContractError because continuing would desynchronise the flat list
// from its source.
type ContractError struct {
	Op       string // operation that detected the violation
	Position int    // offending position, or -1 when not positional
	Length   int    // valid length at the time of the call, or -1
	Reason   string
}

func (e *ContractError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("flatlist: %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("flatlist: %s: position %d out of range (length %d)%s",
		e.Op, e.Position, e.Length, suffix(e.Reason))
}

func suffix(reason string) string {
	if reason == "" {
		return ""
	}
	return ": " + reason
}

func outOfRange(op string, pos, length int, reason string) {
	panic(&ContractError{Op: op, Position: pos, Length: length, Reason: reason})
}

func violation(op, reason string) {
	panic(&ContractError{Op: op, Position: -1, Length: -1, Reason: reason})
}
