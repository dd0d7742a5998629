// Package conversion runs frame conversions on behalf of the command line and
// gRPC surfaces: it resolves named origins, converts, and reports the result
// to logs, traces and metrics.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/signalsfoundry/refframe/frames"
	"github.com/signalsfoundry/refframe/internal/logging"
	"github.com/signalsfoundry/refframe/internal/observability"
	"github.com/signalsfoundry/refframe/model"
	"github.com/signalsfoundry/refframe/sites"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/refframe/internal/conversion"

// ErrInvalidRequest is returned for malformed conversion requests.
var ErrInvalidRequest = errors.New("invalid conversion request")

// Request describes one conversion. At most one of Origin and Site may be
// set. Heading, when set, overrides the site's default heading.
type Request struct {
	From     frames.Kind
	To       frames.Kind
	Position [3]float64

	Origin  *frames.LLA
	Site    string
	Heading *float64
}

// Result is a converted position with the route taken through the frame
// graph.
type Result struct {
	Frame frames.Frame
	Path  []frames.Kind
	Site  string
}

// Service converts positions between frames.
type Service struct {
	sites       *sites.Registry
	log         logging.Logger
	metrics     *observability.ConversionCollector
	siteMetrics *observability.SiteCollector
	tracer      trace.Tracer

	unsubscribe func()
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the base logger.
func WithLogger(log logging.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records conversion outcomes on c.
func WithMetrics(c *observability.ConversionCollector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithSiteMetrics keeps c in step with the site registry and counts lookups.
func WithSiteMetrics(c *observability.SiteCollector) Option {
	return func(s *Service) { s.siteMetrics = c }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewService constructs a Service over reg. A nil registry is replaced with
// an empty one.
func NewService(reg *sites.Registry, opts ...Option) *Service {
	if reg == nil {
		reg = sites.NewRegistry()
	}
	s := &Service{
		sites:       reg,
		log:         logging.Noop(),
		tracer:      otel.Tracer(tracerName),
		unsubscribe: func() {},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.siteMetrics != nil {
		collector := s.siteMetrics
		s.unsubscribe = reg.Subscribe(func(ev sites.Event) {
			collector.SetSiteCount(ev.Count)
		})
		collector.SetSiteCount(reg.Len())
	}
	return s
}

// Close detaches the service from its registry.
func (s *Service) Close() {
	s.unsubscribe()
}

// Sites returns the registry backing named origins.
func (s *Service) Sites() *sites.Registry {
	return s.sites
}

// ListSites returns a snapshot of the known sites ordered by ID.
func (s *Service) ListSites(ctx context.Context) []model.Site {
	list := s.sites.List()
	s.requestLogger(ctx).Debug(ctx, "sites listed", logging.Int("count", len(list)))
	return list
}

// Convert runs req. Failures match the sentinels of the frames and sites
// packages or ErrInvalidRequest.
func (s *Service) Convert(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	log := s.requestLogger(ctx).With(
		logging.String("from", req.From.String()),
		logging.String("to", req.To.String()),
	)

	if err := validate(req); err != nil {
		log.Debug(ctx, "conversion rejected", logging.Err(err))
		s.observe(req, err, 0)
		return Result{}, err
	}

	ref, site, err := s.reference(req)
	if err != nil {
		log.Debug(ctx, "origin lookup failed", logging.Err(err))
		s.observe(req, err, 0)
		return Result{}, err
	}

	path := frames.Path(req.From, req.To)
	ctx, span := s.tracer.Start(ctx, "frames/convert", trace.WithAttributes(
		attribute.String("frames.from", req.From.String()),
		attribute.String("frames.to", req.To.String()),
		attribute.String("frames.path", PathString(path)),
		attribute.Int("frames.hops", len(path)-1),
	))
	defer span.End()
	if site != "" {
		span.SetAttributes(attribute.String("frames.site", site))
	}

	out, err := frames.Convert(NewFrame(req.From, req.Position, ref), req.To, ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn(ctx, "conversion failed", logging.Err(err))
		s.observe(req, err, 0)
		return Result{}, err
	}

	elapsed := time.Since(start)
	s.observe(req, nil, elapsed)
	log.Debug(ctx, "frame converted",
		logging.String("path", PathString(path)),
		logging.String("site", site),
	)
	return Result{Frame: out, Path: path, Site: site}, nil
}

// NewFrame builds a position of the given kind. Earth-fixed kinds take their
// origin and heading from ref.
func NewFrame(kind frames.Kind, pos [3]float64, ref frames.Reference) frames.Frame {
	var opts []frames.AnchorOption
	if ref.HasOrigin {
		opts = append(opts, frames.WithOrigin(ref.Origin))
	}
	opts = append(opts, frames.WithHeading(ref.Heading))

	switch kind {
	case frames.KindECF:
		return frames.NewECF(pos[0], pos[1], pos[2])
	case frames.KindLLA:
		return frames.NewLLA(pos[0], pos[1], pos[2])
	case frames.KindENU:
		return frames.NewENU(pos[0], pos[1], pos[2], opts...)
	case frames.KindDCA:
		return frames.NewDCA(pos[0], pos[1], pos[2], opts...)
	case frames.KindAER:
		return frames.NewAER(pos[0], pos[1], pos[2], opts...)
	default:
		return nil
	}
}

// PathString renders a frame path as "LLA>ECF>ENU".
func PathString(path []frames.Kind) string {
	names := make([]string, len(path))
	for i, k := range path {
		names[i] = k.String()
	}
	return strings.Join(names, ">")
}

func validate(req Request) error {
	if frames.Path(req.From, req.To) == nil {
		return fmt.Errorf("%w: %s to %s", frames.ErrUnknownFrame, req.From, req.To)
	}
	for _, v := range req.Position {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite position %v", ErrInvalidRequest, req.Position)
		}
	}
	if req.Origin != nil && req.Site != "" {
		return fmt.Errorf("%w: both origin and site %q given", ErrInvalidRequest, req.Site)
	}
	if req.Heading != nil && (math.IsNaN(*req.Heading) || math.IsInf(*req.Heading, 0)) {
		return fmt.Errorf("%w: non-finite heading", ErrInvalidRequest)
	}
	return nil
}

func (s *Service) reference(req Request) (frames.Reference, string, error) {
	var ref frames.Reference
	switch {
	case req.Site != "":
		site, err := s.sites.Get(req.Site)
		s.siteMetrics.ObserveLookup(err == nil)
		if err != nil {
			return ref, "", err
		}
		ref = site.Reference()
	case req.Origin != nil:
		ref = frames.ReferenceAt(*req.Origin, 0)
	}
	if req.Heading != nil {
		ref.Heading = *req.Heading
	}
	return ref, req.Site, nil
}

func (s *Service) observe(req Request, err error, d time.Duration) {
	s.metrics.ObserveConversion(req.From.String(), req.To.String(), Outcome(err), d)
}

// Outcome classifies err for the conversion metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, frames.ErrOriginRequired):
		return observability.OutcomeOriginRequired
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, frames.ErrUnknownFrame),
		errors.Is(err, sites.ErrSiteNotFound):
		return observability.OutcomeInvalid
	default:
		return observability.OutcomeError
	}
}

func (s *Service) requestLogger(ctx context.Context) logging.Logger {
	if l := logging.LoggerFromContext(ctx); l != nil {
		return l
	}
	_, l := logging.WithRequestLogger(ctx, s.log)
	return l
}
