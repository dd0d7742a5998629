// Command frameconv converts a single position between reference frames.
//
//	frameconv -from lla -to aer -pos 15,15,55 -origin 10,20,30 -heading 55.5
//	frameconv -from eci -to lla -pos 7000e3,0,0 -epoch 2024-03-20T03:06:00Z
//
// Results go to stdout, logs to stderr.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/signalsfoundry/refframe/frames"
	"github.com/signalsfoundry/refframe/internal/conversion"
	"github.com/signalsfoundry/refframe/internal/logging"
	"github.com/signalsfoundry/refframe/internal/observability"
	"github.com/signalsfoundry/refframe/sites"
)

// eci names the inertial frame accepted by -from and -to. It is converted
// through ECF at -epoch.
const eci = "ECI"

// vec3 is a flag.Value holding three comma or space separated numbers.
type vec3 struct {
	v   [3]float64
	set bool
}

func (p *vec3) Set(s string) error {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(fields) != 3 {
		return fmt.Errorf("want 3 components, got %d", len(fields))
	}
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return err
		}
		p.v[i] = n
	}
	p.set = true
	return nil
}

func (p *vec3) String() string {
	if p == nil || !p.set {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g", p.v[0], p.v[1], p.v[2])
}

type options struct {
	from, to   string
	pos        vec3
	origin     vec3
	site       string
	heading    float64
	headingSet bool
	sitesPath  string
	epoch      time.Time
	format     string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "frameconv:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log := logging.NewFromEnv(stderr)

	tracingCfg := observability.TracingConfigFromEnv("frameconv")
	tracingCfg.Writer = stderr
	shutdown, err := observability.InitTracing(ctx, tracingCfg, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	reg := sites.NewRegistry()
	if opts.sitesPath != "" {
		ids, err := sites.LoadFile(reg, opts.sitesPath)
		if err != nil {
			return err
		}
		log.Debug(ctx, "loaded sites", logging.String("path", opts.sitesPath), logging.Int("count", len(ids)))
	}

	svc := conversion.NewService(reg, conversion.WithLogger(log))
	defer svc.Close()

	req, err := buildRequest(opts)
	if err != nil {
		return err
	}

	res, err := svc.Convert(ctx, req)
	if err != nil {
		return err
	}

	pos := position(res.Frame)
	name := res.Frame.Kind().String()
	path := conversion.PathString(res.Path)
	if strings.EqualFold(opts.to, eci) {
		x, y, z := res.Frame.(frames.ECF).ToECI(opts.epoch)
		pos, name, path = [3]float64{x, y, z}, eci, path+">"+eci
	}
	if strings.EqualFold(opts.from, eci) {
		path = eci + ">" + path
	}

	return writeResult(stdout, opts.format, name, pos, path)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("frameconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.from, "from", "", "source frame: ecf, lla, enu, dca, aer or eci")
	fs.StringVar(&opts.to, "to", "", "target frame: ecf, lla, enu, dca, aer or eci")
	fs.Var(&opts.pos, "pos", "source position as \"a,b,c\" (metres and degrees)")
	fs.Var(&opts.origin, "origin", "origin of earth-fixed frames as \"lat,lon,alt\"")
	fs.StringVar(&opts.site, "site", "", "named origin from the -sites catalogue")
	fs.Float64Var(&opts.heading, "heading", 0, "DCA heading in degrees clockwise from north (overrides the site heading)")
	fs.StringVar(&opts.sitesPath, "sites", "", "path to a JSON site catalogue")
	epoch := fs.String("epoch", "", "RFC 3339 time for ECI conversions")
	fs.StringVar(&opts.format, "format", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "heading" {
			opts.headingSet = true
		}
	})

	if opts.from == "" || opts.to == "" {
		return opts, errors.New("-from and -to are required")
	}
	if !opts.pos.set {
		return opts, errors.New("-pos is required")
	}
	if opts.origin.set && opts.site != "" {
		return opts, errors.New("-origin and -site are mutually exclusive")
	}
	if opts.format != "text" && opts.format != "json" {
		return opts, fmt.Errorf("unknown -format %q", opts.format)
	}

	usesECI := strings.EqualFold(opts.from, eci) || strings.EqualFold(opts.to, eci)
	if *epoch != "" {
		t, err := time.Parse(time.RFC3339Nano, *epoch)
		if err != nil {
			return opts, fmt.Errorf("parse -epoch: %w", err)
		}
		opts.epoch = t
	} else if usesECI {
		return opts, errors.New("-epoch is required for eci conversions")
	}
	return opts, nil
}

func buildRequest(opts options) (conversion.Request, error) {
	req := conversion.Request{Position: opts.pos.v, Site: opts.site}

	if strings.EqualFold(opts.from, eci) {
		req.From = frames.KindECF
		req.Position = position(frames.ECFFromECI(opts.pos.v[0], opts.pos.v[1], opts.pos.v[2], opts.epoch))
	} else {
		k, err := frames.ParseKind(opts.from)
		if err != nil {
			return req, fmt.Errorf("-from: %w", err)
		}
		req.From = k
	}

	if strings.EqualFold(opts.to, eci) {
		req.To = frames.KindECF
	} else {
		k, err := frames.ParseKind(opts.to)
		if err != nil {
			return req, fmt.Errorf("-to: %w", err)
		}
		req.To = k
	}

	if opts.origin.set {
		origin := frames.NewLLA(opts.origin.v[0], opts.origin.v[1], opts.origin.v[2])
		req.Origin = &origin
	}
	if opts.headingSet {
		h := opts.heading
		req.Heading = &h
	}
	return req, nil
}

type result struct {
	Frame    string     `json:"frame"`
	Position [3]float64 `json:"position"`
	Path     string     `json:"path"`
}

func writeResult(w io.Writer, format, frame string, pos [3]float64, path string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		return enc.Encode(result{Frame: frame, Position: pos, Path: path})
	}
	_, err := fmt.Fprintf(w, "%s %.6f %.6f %.6f\npath %s\n", frame, pos[0], pos[1], pos[2], path)
	return err
}

func position(f frames.Frame) [3]float64 {
	a, b, c := f.Position()
	return [3]float64{a, b, c}
}
