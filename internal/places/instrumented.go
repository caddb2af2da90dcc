package places

import (
	"context"
	"time"

	"github.com/UnknownOlympus/itinera/internal/metrics"
	"github.com/UnknownOlympus/itinera/internal/models"
)

// Instrumented records latency and failures of provider calls.
type Instrumented struct {
	next     Client
	provider string
	metrics  *metrics.Metrics
}

// NewInstrumented decorates next with metrics labelled by provider.
func NewInstrumented(next Client, provider string, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: next, provider: provider, metrics: m}
}

func (i *Instrumented) Autocomplete(ctx context.Context, input string) ([]models.Prediction, error) {
	defer i.observe("autocomplete", time.Now())
	predictions, err := i.next.Autocomplete(ctx, input)
	i.count("autocomplete", err)

	return predictions, err
}

func (i *Instrumented) Details(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	defer i.observe("details", time.Now())
	details, err := i.next.Details(ctx, placeID)
	i.count("details", err)

	return details, err
}

func (i *Instrumented) Photo(ctx context.Context, ref string, maxWidth, maxHeight uint) (*models.Photo, error) {
	defer i.observe("photo", time.Now())
	photo, err := i.next.Photo(ctx, ref, maxWidth, maxHeight)
	i.count("photo", err)

	return photo, err
}

func (i *Instrumented) observe(operation string, start time.Time) {
	i.metrics.ProviderSeconds.WithLabelValues(i.provider, operation).Observe(time.Since(start).Seconds())
}

func (i *Instrumented) count(operation string, err error) {
	if err != nil {
		i.metrics.ProviderErrors.WithLabelValues(i.provider, operation).Inc()
	}
}
