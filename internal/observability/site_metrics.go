package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Site lookup results used as the "result" label.
const (
	LookupHit  = "hit"
	LookupMiss = "miss"
)

// SiteCollector exposes metrics for the named-origin catalogue.
type SiteCollector struct {
	gatherer prometheus.Gatherer

	Sites       prometheus.Gauge
	SiteLookups *prometheus.CounterVec
}

// NewSiteCollector registers site catalogue metrics against the provided
// registerer.
func NewSiteCollector(reg prometheus.Registerer) (*SiteCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	sites, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "frames_sites",
		Help: "Current number of named origins in the site catalogue.",
	}), "frames_sites")
	if err != nil {
		return nil, err
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "frames_site_lookups_total",
		Help: "Site lookups performed while resolving conversion origins, labeled by result.",
	}, []string{"result"}), "frames_site_lookups_total")
	if err != nil {
		return nil, err
	}

	return &SiteCollector{
		gatherer:    gatherer,
		Sites:       sites,
		SiteLookups: lookups,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SiteCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a /metrics handler over the collector's gatherer.
func (c *SiteCollector) Handler() http.Handler {
	return handlerFor(c.Gatherer())
}

// SetSiteCount updates the catalogue size gauge.
func (c *SiteCollector) SetSiteCount(count int) {
	if c == nil || c.Sites == nil {
		return
	}
	c.Sites.Set(float64(count))
}

// ObserveLookup counts a site lookup.
func (c *SiteCollector) ObserveLookup(found bool) {
	if c == nil || c.SiteLookups == nil {
		return
	}
	result := LookupMiss
	if found {
		result = LookupHit
	}
	c.SiteLookups.WithLabelValues(result).Inc()
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
