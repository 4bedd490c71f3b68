package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/riverwatch/catchment-service/internal/domain"
	"github.com/riverwatch/catchment-service/internal/observability"
	"github.com/riverwatch/catchment-service/internal/registry"
)

// ErrSiteNotAdmitted marks a reading whose site falls outside the catchment
// boundary. The pipeline drops such readings silently, counting them in a
// dedicated metric rather than as transform failures.
var ErrSiteNotAdmitted = errors.New("site not admitted to catchment")

// ReadingTransformer implements Transformer using the domain transform
// functions, admitting each reading's site against the catchment boundary.
type ReadingTransformer struct {
	sites   *registry.SiteRegistry
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a ReadingTransformer over the given site registry.
func NewTransformer(sites *registry.SiteRegistry, metrics *observability.Metrics, logger *slog.Logger) *ReadingTransformer {
	return &ReadingTransformer{
		sites:   sites,
		metrics: metrics,
		logger:  logger,
	}
}

func (t *ReadingTransformer) Transform(_ context.Context, raw domain.RawReading) (domain.Reading, error) {
	reading, err := domain.ParseRawReading(raw)
	if err != nil {
		return domain.Reading{}, err
	}

	reading = domain.EnrichReading(reading)

	if !t.sites.Admit(reading.SiteID, reading.Geo) {
		return domain.Reading{}, ErrSiteNotAdmitted
	}
	t.metrics.SitesAdmitted.Set(float64(t.sites.Len()))

	return reading, nil
}
