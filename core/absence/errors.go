package absence

import "fmt"

// PartialWriteError means the parent task exists but the operation stopped before linking its subtasks.
// Nothing is rolled back: ParentID and SubtaskIDs are the records left behind.
type PartialWriteError struct {
	ParentID   string
	SubtaskIDs []string
	Err        error
}

func (err PartialWriteError) Error() string {
	return fmt.Sprintf("task %s left incomplete with %d unlinked subtask(s): %v", err.ParentID, len(err.SubtaskIDs), err.Err)
}

func (err PartialWriteError) Unwrap() error { return err.Err }

// Orphans lists every record id created by the failed operation, parent first.
func (err PartialWriteError) Orphans() []string {
	return append([]string{err.ParentID}, err.SubtaskIDs...)
}
