package surface

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestLoadThresholds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Thresholds
		wantErr bool
	}{
		{"empty", "", DefaultThresholds(), false},
		{"override clearance", "clearance: 0.3\n", func() Thresholds {
			th := DefaultThresholds()
			th.Clearance = 0.3
			return th
		}(), false},
		{"all fields", "upward_cosine: 0.9\nmin_surface_area: 0.01\nclearance: 1\nray_offset: 0.02\n",
			Thresholds{UpwardCosine: 0.9, MinSurfaceArea: 0.01, Clearance: 1, RayOffset: 0.02}, false},
		{"unknown key", "clearence: 0.3\n", Thresholds{}, true},
		{"invalid value", "clearance: -1\n", Thresholds{}, true},
		{"not yaml", "clearance: [", Thresholds{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadThresholds(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadThresholds() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LoadThresholds() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadThresholdsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte("min_surface_area: 0.04\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	th, err := LoadThresholdsFile(path)
	if err != nil {
		t.Fatalf("LoadThresholdsFile() error = %v", err)
	}
	if th.MinSurfaceArea != 0.04 || th.Clearance != 0.5 {
		t.Errorf("LoadThresholdsFile() = %+v", th)
	}
	if _, err := LoadThresholdsFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"cosine too high", func(th *Thresholds) { th.UpwardCosine = 1 }},
		{"cosine too low", func(th *Thresholds) { th.UpwardCosine = -2 }},
		{"negative area", func(th *Thresholds) { th.MinSurfaceArea = -0.1 }},
		{"negative clearance", func(th *Thresholds) { th.Clearance = -0.1 }},
		{"zero offset", func(th *Thresholds) { th.RayOffset = 0 }},
	}
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			if err := th.Validate(); !errors.Is(err, geometry.ErrPrecondition) {
				t.Errorf("Validate() = %v, want ErrPrecondition", err)
			}
		})
	}
}

func TestReasonString(t *testing.T) {
	for _, r := range []Reason{NoUpwardFaces, NoLargeSurface, NoClearance} {
		if strings.HasPrefix(r.String(), "Reason(") {
			t.Errorf("reason %d has no description", int(r))
		}
	}
	if Reason(99).String() != "Reason(99)" {
		t.Errorf("unknown reason = %q", Reason(99).String())
	}
}
