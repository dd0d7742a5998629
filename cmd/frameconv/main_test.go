package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/signalsfoundry/refframe/frames"
	"github.com/signalsfoundry/refframe/internal/observability"
	"github.com/signalsfoundry/refframe/sites"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(observability.EnvTracingEnabled, "")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func parseText(t *testing.T, out string) (string, [3]float64, string) {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q, want 2 lines", out)
	}
	fields := strings.Fields(lines[0])
	if len(fields) != 4 {
		t.Fatalf("result line = %q", lines[0])
	}
	var pos [3]float64
	for i := range pos {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			t.Fatalf("parse %q: %v", fields[i+1], err)
		}
		pos[i] = v
	}
	return fields[0], pos, strings.TrimPrefix(lines[1], "path ")
}

func TestLLAToAER(t *testing.T) {
	out, err := runCLI(t, "-from", "lla", "-to", "aer", "-pos", "15,15,55", "-origin", "10 20 30", "-heading", "55.5")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	frame, pos, path := parseText(t, out)
	if frame != "AER" || path != "LLA>ECF>ENU>DCA>AER" {
		t.Fatalf("frame=%q path=%q", frame, path)
	}

	origin := frames.NewLLA(10, 20, 30)
	a, e, r := frames.NewLLA(15, 15, 55).ToAER(origin, 55.5).Position()
	for i, want := range [3]float64{a, e, r} {
		if math.Abs(pos[i]-want) > 1e-5 {
			t.Fatalf("position = %v, want (%v, %v, %v)", pos, a, e, r)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	out, err := runCLI(t, "-from", "ecef", "-to", "lla", "-pos", "6378137,0,0", "-format", "json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got result
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if got.Frame != "LLA" || got.Path != "ECF>LLA" {
		t.Fatalf("result = %+v", got)
	}
	if got.Position[0] != 0 || got.Position[1] != 0 || math.Abs(got.Position[2]) > 1e-6 {
		t.Fatalf("position = %v, want (0, 0, 0)", got.Position)
	}
}

func TestECIRoundTrip(t *testing.T) {
	out, err := runCLI(t, "-from", "eci", "-to", "eci", "-pos", "7000000,-1200000,3400000",
		"-epoch", "2024-03-20T03:06:00Z")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	frame, pos, path := parseText(t, out)
	if frame != "ECI" || path != "ECI>ECF>ECI" {
		t.Fatalf("frame=%q path=%q", frame, path)
	}
	for i, want := range [3]float64{7000000, -1200000, 3400000} {
		if math.Abs(pos[i]-want) > 1e-3 {
			t.Fatalf("position = %v", pos)
		}
	}
}

func TestSiteCatalogue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")
	catalogue := `{"sites": [{"id": "pad", "latitude": 10, "longitude": 20, "altitude": 30, "heading": 90}]}`
	if err := os.WriteFile(path, []byte(catalogue), 0o644); err != nil {
		t.Fatalf("write catalogue: %v", err)
	}

	out, err := runCLI(t, "-from", "enu", "-to", "dca", "-pos", "100,0,5", "-site", "pad", "-sites", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	frame, pos, _ := parseText(t, out)
	if frame != "DCA" || math.Abs(pos[0]-100) > 1e-5 || math.Abs(pos[1]) > 1e-5 || pos[2] != 5 {
		t.Fatalf("frame=%q position=%v, want DCA (100, 0, 5)", frame, pos)
	}

	if _, err := runCLI(t, "-from", "enu", "-to", "dca", "-pos", "1,2,3", "-site", "nowhere", "-sites", path); !errors.Is(err, sites.ErrSiteNotFound) {
		t.Fatalf("unknown site err = %v", err)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"missing frames", []string{"-pos", "1,2,3"}, nil},
		{"missing position", []string{"-from", "ecf", "-to", "lla"}, nil},
		{"short position", []string{"-from", "ecf", "-to", "lla", "-pos", "1,2"}, nil},
		{"origin and site", []string{"-from", "lla", "-to", "enu", "-pos", "1,2,3", "-origin", "0,0,0", "-site", "x"}, nil},
		{"eci without epoch", []string{"-from", "eci", "-to", "lla", "-pos", "1,2,3"}, nil},
		{"bad epoch", []string{"-from", "eci", "-to", "lla", "-pos", "1,2,3", "-epoch", "yesterday"}, nil},
		{"bad format", []string{"-from", "ecf", "-to", "lla", "-pos", "1,2,3", "-format", "xml"}, nil},
		{"unknown frame", []string{"-from", "ned", "-to", "lla", "-pos", "1,2,3"}, frames.ErrUnknownFrame},
		{"origin required", []string{"-from", "ecf", "-to", "enu", "-pos", "1,2,3"}, frames.ErrOriginRequired},
		{"help", []string{"-h"}, flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatalf("run succeeded with output %q", out)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("err = %v, want %v", err, tt.is)
			}
			if out != "" {
				t.Fatalf("stdout = %q, want empty on error", out)
			}
		})
	}
}

func TestVec3Flag(t *testing.T) {
	var v vec3
	if v.String() != "" {
		t.Fatalf("unset String() = %q", v.String())
	}
	if err := v.Set(" 1.5, -2 ,3e2 "); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v.v != [3]float64{1.5, -2, 300} || v.String() != "1.5,-2,300" {
		t.Fatalf("vec3 = %v (%s)", v.v, v.String())
	}
	if err := v.Set("1,x,3"); err == nil {
		t.Fatalf("Set accepted a non-number")
	}
}
