// Package registry provides a concurrency-safe view over a catchment's site
// membership. The domain model itself is not designed for concurrent
// mutation, so the pipeline goroutine and the HTTP handlers share a
// catchment only through this wrapper.
package registry

import (
	"sync"

	"github.com/riverwatch/catchment-service/internal/domain"
)

// SiteRegistry wraps a Catchment, interning sites by ID so replayed
// readings resolve to the same *Site and admission stays idempotent.
type SiteRegistry struct {
	mu        sync.RWMutex
	catchment *domain.Catchment
	byID      map[string]*domain.Site
}

// New creates a registry around the given catchment.
func New(catchment *domain.Catchment) *SiteRegistry {
	return &SiteRegistry{
		catchment: catchment,
		byID:      make(map[string]*domain.Site),
	}
}

// Admit resolves the site by ID, creating it on first sight, offers it to
// the catchment, and reports whether the site is a member afterwards.
// A site first seen without coordinates keeps its original identity on
// later sightings; coordinates from later readings do not reposition it.
func (r *SiteRegistry) Admit(id string, geo domain.Geo) bool {
	if id == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	site, ok := r.byID[id]
	if !ok {
		if geo.Positioned {
			site = domain.NewSiteAt(id, geo.Lon, geo.Lat)
		} else {
			site = domain.NewSite(id)
		}
		r.byID[id] = site
	}

	r.catchment.AddSite(site)
	return r.catchment.HasSite(site)
}

// CatchmentName returns the wrapped catchment's name.
func (r *SiteRegistry) CatchmentName() string {
	return r.catchment.Name()
}

// Bounded reports whether the wrapped catchment has a boundary.
func (r *SiteRegistry) Bounded() bool {
	return r.catchment.Bounded()
}

// Sites returns a snapshot of the admitted sites in admission order.
func (r *SiteRegistry) Sites() []*domain.Site {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.Site(nil), r.catchment.Sites()...)
}

// Len returns the number of admitted sites.
func (r *SiteRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.catchment.Sites())
}
