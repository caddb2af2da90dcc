package models

import "time"

// Place represents a single itinerary entry.
type Place struct {
	PlaceID      string     `json:"placeId"`      // PlaceID is the external place identifier and document key.
	Name         string     `json:"name"`         // Name is the display name of the place.
	Visited      bool       `json:"visited"`      // Visited is toggled by the user after the visit.
	ShortAddress string     `json:"shortAddress"` // ShortAddress is derived once when the place is added.
	Tasks        []Task     `json:"tasks"`        // Tasks in display order.
	Schedule     *time.Time `json:"schedule"`     // Schedule is the planned visit time, nil when unscheduled.
}

// BeforeSave drops tasks without a description so they never reach the store.
func (p *Place) BeforeSave() {
	p.Tasks = FilledTasks(p.Tasks)
}

// AfterLoad guarantees Tasks is an empty slice rather than nil.
func (p *Place) AfterLoad() {
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
}

// FilledTasks returns a new slice holding only the tasks with a description.
func FilledTasks(tasks []Task) []Task {
	filled := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Description != "" {
			filled = append(filled, task)
		}
	}

	return filled
}

// WithDraftTask returns a copy of p whose task list ends with an empty task,
// the slot where the next task is typed in. The copy is never meant to be stored.
func (p Place) WithDraftTask() Place {
	tasks := make([]Task, 0, len(p.Tasks)+1)
	tasks = append(tasks, p.Tasks...)
	p.Tasks = append(tasks, Task{})

	return p
}
