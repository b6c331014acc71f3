package tape

import "fmt"

// MemoryLimitExceededError reports growth past a configured hard limit.
type MemoryLimitExceededError struct {
	Requested uint
	Limit     uint
}

func (e *MemoryLimitExceededError) Error() string {
	return fmt.Sprintf("tape growth to [%d] cells exceeds limit [%d]", e.Requested, e.Limit)
}

// PointerUnderflowError reports a negative index against a tape model
// that does not support one.
type PointerUnderflowError struct {
	Pos int
}

func (e *PointerUnderflowError) Error() string {
	return fmt.Sprintf("pointer [%d] underflows tape lower bound", e.Pos)
}
