package models

// Task is a checklist item attached to a place.
// An empty Description marks the "next task" input slot and is never persisted.
type Task struct {
	Description string `json:"description"` // Description is the free-text content of the task.
	Done        bool   `json:"done"`        // Done reports whether the task was checked off.
}
