package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/itinera/internal/itinerary"
	"github.com/UnknownOlympus/itinera/internal/metrics"
	"github.com/UnknownOlympus/itinera/internal/models"
	"github.com/UnknownOlympus/itinera/internal/places"
	"github.com/UnknownOlympus/itinera/internal/repository"
)

// Photo bounds used when the caller does not ask for a size.
const (
	DefaultPhotoWidth  uint = 400
	DefaultPhotoHeight uint = 400
)

// Service errors.
var (
	ErrPlaceNotAdded = errors.New("place is not in the itinerary")
	ErrTaskIndex     = errors.New("task index out of range")
	ErrEmptyTask     = errors.New("task description is empty")
	// ErrProvider marks failures of the places provider.
	ErrProvider      = errors.New("places provider failed")
)

// PlaceRepository is the storage of itinerary places.
type PlaceRepository interface {
	Get(ctx context.Context, id string) (models.Place, bool, error)
	Set(ctx context.Context, place models.Place) error
	Add(ctx context.Context, place models.Place) (string, error)
	Delete(ctx context.Context, id string) error
	Snapshot(ctx context.Context) ([]models.Place, error)
	List(ctx context.Context) (*repository.Subscription[models.Place], error)
}

// ItineraryService manages the places of an itinerary: adding them from the
// places provider and editing visits, schedules and tasks. Every edit
// re-stores the whole place.
type ItineraryService struct {
	log     *slog.Logger       // Logger for logging service activities
	repo    PlaceRepository    // Storage of itinerary places
	places  places.Client      // Provider of place search and details
	grouper *itinerary.Grouper // Builds the month grouped list
	metrics *metrics.Metrics   // Metrics for live subscriptions
}

// Detail is everything the place screen shows.
type Detail struct {
	Added    bool                 `json:"added"`
	Place    *models.Place        `json:"place,omitempty"`    // Place is the stored entry with a trailing draft task.
	Schedule string               `json:"schedule,omitempty"` // Schedule in datetime-local form.
	Details  *models.PlaceDetails `json:"details"`
}

// NewItineraryService creates a new instance of ItineraryService.
func NewItineraryService(
	log *slog.Logger,
	repo PlaceRepository,
	client places.Client,
	grouper *itinerary.Grouper,
	metrics *metrics.Metrics,
) *ItineraryService {
	return &ItineraryService{
		log:     log,
		repo:    repo,
		places:  client,
		grouper: grouper,
		metrics: metrics,
	}
}

// Itinerary returns the stored places grouped by month.
func (s *ItineraryService) Itinerary(ctx context.Context) ([]itinerary.Group, error) {
	stored, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load itinerary: %w", err)
	}

	return s.grouper.Group(stored), nil
}

// Watch streams the grouped itinerary, once now and again after every change.
func (s *ItineraryService) Watch(ctx context.Context) (*Feed, error) {
	sub, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to itinerary: %w", err)
	}

	feed := &Feed{groups: make(chan []itinerary.Group), sub: sub}
	s.metrics.ActiveSubscriptions.Inc()
	s.log.DebugContext(ctx, "Itinerary feed opened")

	go func() {
		defer close(feed.groups)
		defer s.metrics.ActiveSubscriptions.Dec()

		for stored := range sub.Updates() {
			select {
			case feed.groups <- s.grouper.Group(stored):
			case <-sub.Done():
				return
			}
		}
	}()

	return feed, nil
}

// Detail loads a place from the provider together with its itinerary entry, if any.
func (s *ItineraryService) Detail(ctx context.Context, placeID string) (*Detail, error) {
	details, err := s.places.Details(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get place details: %w: %w", ErrProvider, err)
	}

	place, found, err := s.repo.Get(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load place: %w", err)
	}

	detail := &Detail{Added: found, Details: details}
	if found {
		draft := place.WithDraftTask()
		detail.Place = &draft
		detail.Schedule = itinerary.FormatScheduleInput(place.Schedule, s.grouper.Location())
	}

	return detail, nil
}

// AddPlace puts the place in the itinerary. A place that is already there is returned unchanged.
func (s *ItineraryService) AddPlace(ctx context.Context, placeID string) (models.Place, error) {
	existing, found, err := s.repo.Get(ctx, placeID)
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to load place: %w", err)
	}
	if found {
		return existing, nil
	}

	details, err := s.places.Details(ctx, placeID)
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to get place details: %w: %w", ErrProvider, err)
	}

	place := places.NewPlaceFromDetails(details)
	if place.PlaceID, err = s.repo.Add(ctx, place); err != nil {
		return models.Place{}, fmt.Errorf("failed to add place: %w", err)
	}

	s.log.InfoContext(ctx, "Place added to itinerary", "place_id", place.PlaceID, "name", place.Name)

	return place, nil
}

// RemovePlace takes the place out of the itinerary.
func (s *ItineraryService) RemovePlace(ctx context.Context, placeID string) error {
	_, found, err := s.repo.Get(ctx, placeID)
	if err != nil {
		return fmt.Errorf("failed to load place: %w", err)
	}
	if !found {
		return ErrPlaceNotAdded
	}

	if err = s.repo.Delete(ctx, placeID); err != nil {
		return fmt.Errorf("failed to remove place: %w", err)
	}

	s.log.InfoContext(ctx, "Place removed from itinerary", "place_id", placeID)

	return nil
}

// SetVisited marks the place as visited or not.
func (s *ItineraryService) SetVisited(ctx context.Context, placeID string, visited bool) (models.Place, error) {
	return s.update(ctx, placeID, func(place *models.Place) error {
		place.Visited = visited
		return nil
	})
}

// SetSchedule plans the visit. A nil schedule clears it.
func (s *ItineraryService) SetSchedule(ctx context.Context, placeID string, schedule *time.Time) (models.Place, error) {
	return s.update(ctx, placeID, func(place *models.Place) error {
		place.Schedule = schedule
		return nil
	})
}

// AddTask appends a task to the place's checklist.
func (s *ItineraryService) AddTask(ctx context.Context, placeID, description string) (models.Place, error) {
	if description == "" {
		return models.Place{}, ErrEmptyTask
	}

	return s.update(ctx, placeID, func(place *models.Place) error {
		place.Tasks = append(place.Tasks, models.Task{Description: description})
		return nil
	})
}

// UpdateTask rewrites the task at index. Index len(tasks) addresses the draft
// task and appends. An empty description drops the task.
func (s *ItineraryService) UpdateTask(
	ctx context.Context,
	placeID string,
	index int,
	description string,
	done bool,
) (models.Place, error) {
	return s.update(ctx, placeID, func(place *models.Place) error {
		if index < 0 || index > len(place.Tasks) {
			return fmt.Errorf("%w: %d", ErrTaskIndex, index)
		}

		task := models.Task{Description: description, Done: done}
		if index == len(place.Tasks) {
			place.Tasks = append(place.Tasks, task)
		} else {
			place.Tasks[index] = task
		}

		return nil
	})
}

// RemoveTask deletes the task at index.
func (s *ItineraryService) RemoveTask(ctx context.Context, placeID string, index int) (models.Place, error) {
	return s.update(ctx, placeID, func(place *models.Place) error {
		if index < 0 || index >= len(place.Tasks) {
			return fmt.Errorf("%w: %d", ErrTaskIndex, index)
		}

		place.Tasks = append(place.Tasks[:index], place.Tasks[index+1:]...)

		return nil
	})
}

// Search returns autocomplete suggestions for input.
func (s *ItineraryService) Search(ctx context.Context, input string) ([]models.Prediction, error) {
	if input == "" {
		return []models.Prediction{}, nil
	}

	predictions, err := s.places.Autocomplete(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w: %w", ErrProvider, err)
	}

	return predictions, nil
}

// Photo downloads a place photo. Zero bounds fall back to the defaults.
func (s *ItineraryService) Photo(ctx context.Context, ref string, maxWidth, maxHeight uint) (*models.Photo, error) {
	if maxWidth == 0 {
		maxWidth = DefaultPhotoWidth
	}
	if maxHeight == 0 {
		maxHeight = DefaultPhotoHeight
	}

	photo, err := s.places.Photo(ctx, ref, maxWidth, maxHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to get place photo: %w: %w", ErrProvider, err)
	}

	return photo, nil
}

// Location returns the time zone schedules are read and shown in.
func (s *ItineraryService) Location() *time.Location {
	return s.grouper.Location()
}

// update loads the place, applies mutate and stores the whole place again.
func (s *ItineraryService) update(
	ctx context.Context,
	placeID string,
	mutate func(place *models.Place) error,
) (models.Place, error) {
	place, found, err := s.repo.Get(ctx, placeID)
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to load place: %w", err)
	}
	if !found {
		return models.Place{}, ErrPlaceNotAdded
	}

	if err = mutate(&place); err != nil {
		return models.Place{}, err
	}

	if err = s.repo.Set(ctx, place); err != nil {
		return models.Place{}, fmt.Errorf("failed to save place: %w", err)
	}
	s.log.DebugContext(ctx, "Place updated", "place_id", placeID)

	place.Tasks = models.FilledTasks(place.Tasks)

	return place, nil
}
