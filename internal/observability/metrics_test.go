package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryInterceptorRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/refframe.v1.FrameService/Convert"}

	_, err = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		time.Sleep(time.Millisecond)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("interceptor handler returned error: %v", err)
	}

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("FrameService", "Convert", "OK")); got != 1 {
		t.Fatalf("frames_rpc_requests_total = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "frames_rpc_duration_seconds", map[string]string{
		"service": "FrameService",
		"method":  "Convert",
	}); count != 1 {
		t.Fatalf("frames_rpc_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestUnaryInterceptorRecordsErrorCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/refframe.v1.FrameService/ListSites"}

	_, _ = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.FailedPrecondition, "origin required")
	})

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("FrameService", "ListSites", "FailedPrecondition")); got != 1 {
		t.Fatalf("frames_rpc_requests_total error label = %v, want 1", got)
	}
}

func TestObserveConversion(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}

	collector.ObserveConversion("LLA", "AER", OutcomeOK, 3*time.Microsecond)
	collector.ObserveConversion("LLA", "AER", OutcomeOK, 4*time.Microsecond)
	collector.ObserveConversion("ENU", "ECF", OutcomeOriginRequired, time.Microsecond)

	if got := testutil.ToFloat64(collector.Conversions.WithLabelValues("LLA", "AER", OutcomeOK)); got != 2 {
		t.Fatalf("ok conversions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Conversions.WithLabelValues("ENU", "ECF", OutcomeOriginRequired)); got != 1 {
		t.Fatalf("origin_required conversions = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "frames_conversion_duration_seconds", map[string]string{
		"from": "LLA",
		"to":   "AER",
	}); count != 2 {
		t.Fatalf("LLA->AER duration samples = %d, want 2", count)
	}
	if count := histogramSampleCount(t, reg, "frames_conversion_duration_seconds", map[string]string{
		"from": "ENU",
		"to":   "ECF",
	}); count != 0 {
		t.Fatalf("failed conversion observed a duration: %d samples", count)
	}

	var nilCollector *ConversionCollector
	nilCollector.ObserveConversion("ECF", "LLA", OutcomeOK, time.Second)
}

func TestCollectorsReuseRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}
	second, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("second NewConversionCollector: %v", err)
	}
	if first.Conversions != second.Conversions {
		t.Fatalf("second collector did not reuse registered counter")
	}

	if _, err := NewSiteCollector(reg); err != nil {
		t.Fatalf("NewSiteCollector: %v", err)
	}
	if _, err := NewSiteCollector(reg); err != nil {
		t.Fatalf("second NewSiteCollector: %v", err)
	}
}

func TestIncompatibleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frames_sites",
		Help: "Current number of named origins in the site catalogue.",
	}))
	if _, err := NewSiteCollector(reg); err == nil {
		t.Fatalf("NewSiteCollector succeeded over an incompatible collector")
	}
}

func TestMetricsHandlerExposesSiteGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	conversions, err := NewConversionCollector(reg)
	if err != nil {
		t.Fatalf("NewConversionCollector: %v", err)
	}
	sites, err := NewSiteCollector(reg)
	if err != nil {
		t.Fatalf("NewSiteCollector: %v", err)
	}
	sites.SetSiteCount(7)
	sites.ObserveLookup(true)
	sites.ObserveLookup(false)
	conversions.ObserveConversion("ECF", "LLA", OutcomeOK, time.Microsecond)
	conversions.RPCRequests.WithLabelValues("svc", "method", "OK").Inc()
	conversions.RPCDurations.WithLabelValues("svc", "method").Observe(0.01)

	if got := testutil.ToFloat64(sites.Sites); got != 7 {
		t.Fatalf("frames_sites = %v, want 7", got)
	}
	if got := testutil.ToFloat64(sites.SiteLookups.WithLabelValues(LookupMiss)); got != 1 {
		t.Fatalf("site misses = %v, want 1", got)
	}

	for _, h := range []http.Handler{conversions.Handler(), sites.Handler()} {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("/metrics status = %d, want 200", rr.Code)
		}
		body := rr.Body.String()
		for _, metric := range []string{
			"frames_conversions_total",
			"frames_conversion_duration_seconds",
			"frames_rpc_requests_total",
			"frames_rpc_duration_seconds",
			"frames_sites 7",
			"frames_site_lookups_total",
		} {
			if !strings.Contains(body, metric) {
				t.Fatalf("expected %q in /metrics output", metric)
			}
		}
	}
}

func TestSplitMethod(t *testing.T) {
	tests := []struct {
		in            string
		service, meth string
	}{
		{"/refframe.v1.FrameService/Convert", "FrameService", "Convert"},
		{"FrameService/ListSites", "FrameService", "ListSites"},
		{"", "unknown", "unknown"},
		{"/Convert", "unknown", "unknown"},
		{"/svc/", "svc", "unknown"},
	}
	for _, tt := range tests {
		service, method := SplitMethod(tt.in)
		if service != tt.service || method != tt.meth {
			t.Fatalf("SplitMethod(%q) = %q, %q, want %q, %q", tt.in, service, method, tt.service, tt.meth)
		}
	}
}

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv(EnvTracingEnabled, "TRUE")
	t.Setenv(EnvTracingExporter, "OTLP")
	t.Setenv(EnvTracingServiceName, "")
	t.Setenv(EnvTracingSampleRatio, "0.25")
	t.Setenv(EnvOTLPEndpoint, "collector:4317")

	cfg := TracingConfigFromEnv("frameconv")
	if !cfg.Enabled || cfg.Exporter != "otlp" || cfg.ServiceName != "frameconv" ||
		cfg.SampleRatio != 0.25 || cfg.Endpoint != "collector:4317" {
		t.Fatalf("TracingConfigFromEnv = %+v", cfg)
	}

	t.Setenv(EnvTracingSampleRatio, "7")
	if cfg := TracingConfigFromEnv("x"); cfg.SampleRatio != 1 {
		t.Fatalf("out-of-range ratio accepted: %v", cfg.SampleRatio)
	}
}

func TestInitTracing(t *testing.T) {
	ctx := context.Background()

	shutdown, err := InitTracing(ctx, TracingConfig{}, nil)
	if err != nil {
		t.Fatalf("InitTracing disabled: %v", err)
	}
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}

	if _, err := InitTracing(ctx, TracingConfig{Enabled: true, Exporter: "zipkin"}, nil); err == nil {
		t.Fatalf("InitTracing accepted unsupported exporter")
	}

	var buf bytes.Buffer
	shutdown, err = InitTracing(ctx, TracingConfig{
		Enabled:     true,
		ServiceName: "test",
		Exporter:    "stdout",
		SampleRatio: 1,
		Writer:      &buf,
	}, nil)
	if err != nil {
		t.Fatalf("InitTracing stdout: %v", err)
	}
	ShutdownWithTimeout(ctx, shutdown, nil)
	ShutdownWithTimeout(ctx, func(context.Context) error { return errors.New("flush failed") }, nil)
	ShutdownWithTimeout(ctx, nil, nil)
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
