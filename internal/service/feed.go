package service

import (
	"github.com/UnknownOlympus/itinera/internal/itinerary"
	"github.com/UnknownOlympus/itinera/internal/models"
	"github.com/UnknownOlympus/itinera/internal/repository"
)

// Feed is a live, month grouped view of the itinerary.
type Feed struct {
	groups chan []itinerary.Group
	sub    *repository.Subscription[models.Place]
}

// Updates delivers the grouped itinerary after every change. It is closed when the feed ends.
func (f *Feed) Updates() <-chan []itinerary.Group {
	return f.groups
}

// Err returns the failure that ended the feed, if any.
func (f *Feed) Err() error {
	return f.sub.Err()
}

// Close stops the feed and releases the store listener.
func (f *Feed) Close() {
	f.sub.Unsubscribe()
}
