package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Location is the shared capability of named, geolocated entities.
// Both Site and Catchment implement it.
type Location interface {
	Name() string
}

// Site is a fixed monitoring installation, optionally positioned by a
// WGS 84 longitude/latitude pair. Sites are immutable after construction.
type Site struct {
	name     string
	location *orb.Point
}

// NewSite creates a site with no position.
func NewSite(name string) *Site {
	return &Site{name: name}
}

// NewSiteAt creates a site positioned at (lon, lat) in EPSG:4326.
func NewSiteAt(name string, lon, lat float64) *Site {
	p := orb.Point{lon, lat}
	return &Site{name: name, location: &p}
}

// Name returns the site identifier, e.g. "FP35".
func (s *Site) Name() string { return s.name }

// Location returns the site position and whether one was set.
func (s *Site) Location() (orb.Point, bool) {
	if s.location == nil {
		return orb.Point{}, false
	}
	return *s.location, true
}

// Catchment is a river drainage area owning the sites it contains.
// The boundary and name are immutable; membership grows monotonically
// through AddSite. Not safe for concurrent mutation.
type Catchment struct {
	name  string
	area  orb.Polygon
	sites []*Site
}

// NewCatchment creates an unbounded catchment, which admits every site.
func NewCatchment(name string) *Catchment {
	return &Catchment{name: name}
}

// NewCatchmentWithArea creates a catchment bounded by the given polygon.
func NewCatchmentWithArea(name string, area orb.Polygon) *Catchment {
	return &Catchment{name: name, area: area}
}

// NewCatchmentFromBoundary creates a catchment bounded by the polygon read
// from the first feature of the boundary file at path. The format is chosen
// by file extension, see LoadBoundary.
func NewCatchmentFromBoundary(name, path string) (*Catchment, error) {
	area, err := LoadBoundary(path)
	if err != nil {
		return nil, err
	}
	return &Catchment{name: name, area: area}, nil
}

// Name returns the catchment name, e.g. "Pang".
func (c *Catchment) Name() string { return c.name }

// Area returns the boundary polygon, nil for an unbounded catchment.
func (c *Catchment) Area() orb.Polygon { return c.area }

// Bounded reports whether the catchment has a boundary polygon.
func (c *Catchment) Bounded() bool { return c.area != nil }

// Sites returns the admitted sites in admission order. It is nil until the
// first successful AddSite. Callers must not modify the returned slice.
func (c *Catchment) Sites() []*Site { return c.sites }

// AddSite admits a site when the catchment is unbounded, or when the site
// has a position inside the boundary. Out-of-bounds sites, sites without a
// position in a bounded catchment, and sites already admitted are all
// silent no-ops.
func (c *Catchment) AddSite(s *Site) {
	if c.HasSite(s) {
		return
	}
	if c.area != nil {
		p, ok := s.Location()
		if !ok || !c.Contains(p) {
			return
		}
	}
	c.sites = append(c.sites, s)
}

// HasSite reports whether the site has already been admitted.
func (c *Catchment) HasSite(s *Site) bool {
	for _, existing := range c.sites {
		if existing == s {
			return true
		}
	}
	return false
}

// Contains reports whether a point falls inside the boundary polygon.
// An unbounded catchment contains every point.
func (c *Catchment) Contains(p orb.Point) bool {
	if c.area == nil {
		return true
	}
	return planar.PolygonContains(c.area, p)
}
