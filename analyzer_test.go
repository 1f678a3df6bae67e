package strata

import (
	"math"
	"os"
	"testing"

	"github.com/chazu/strata/pkg/surface"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/samber/lo"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func bodyByName(t *testing.T, r Report, name string) BodyReport {
	t.Helper()
	for _, b := range r.Bodies {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("no body %q in report", name)
	return BodyReport{}
}

// TestE2EKitchenExample exercises the full pipeline: scene source → engine →
// world → views, boxes, surfaces and containment.
func TestE2EKitchenExample(t *testing.T) {
	a := NewAnalyzer()

	source, err := os.ReadFile("examples/kitchen.scene")
	if err != nil {
		t.Fatalf("failed to read kitchen.scene: %v", err)
	}
	report := a.Analyze(string(source))

	if len(report.Errors) > 0 {
		for _, e := range report.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if report.World != "world" {
		t.Errorf("world = %q", report.World)
	}

	var names, kinds []string
	for _, b := range report.Bodies {
		names = append(names, b.Name)
		kinds = append(kinds, b.Kind)
		if b.Error != "" {
			t.Errorf("body %s: %s", b.Name, b.Error)
		}
	}
	wantNames := []string{"dining_table", "cabinet", "top_drawer", "drawer_handle", "counter", "mug", "fridge", "milk"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("bodies mismatch (-want +got):\n%s", diff)
	}
	wantKinds := []string{"table", "container", "drawer", "", "countertop", "", "", ""}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	table := bodyByName(t, report, "dining_table")
	if table.Triangles != 60 {
		t.Errorf("table triangles = %d, want 60", table.Triangles)
	}
	if len(table.Boxes) != 5 {
		t.Errorf("table boxes = %d, want 5", len(table.Boxes))
	}
	wantBounds := &BoxData{Min: [3]float64{1.4, -0.4, 0}, Max: [3]float64{2.6, 0.4, 0.75}}
	if diff := cmp.Diff(wantBounds, table.Bounds, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("table bounds mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		body       string
		wantName   string
		wantArea   float64
		wantMinZ   float64
		wantMaxZ   float64
		wantReason []string
	}{
		{body: "dining_table", wantName: "dining_table_surface_region", wantArea: 0.96, wantMinZ: 0.75, wantMaxZ: 0.75},
		{body: "top_drawer", wantName: "top_drawer_surface_region", wantArea: 0.25, wantMinZ: 0.01, wantMaxZ: 0.01},
		// Half the counter top is under the shelf; the shelf top is free.
		{body: "counter", wantName: "counter_surface_region", wantArea: 0.9, wantMinZ: 0.9, wantMaxZ: 1.22},
		// The mug's rim is tessellated, so its cap may or may not count as flat.
		{body: "mug", wantReason: []string{surface.NoLargeSurface.String(), surface.NoUpwardFaces.String()}},
		{body: "milk", wantReason: []string{surface.NoLargeSurface.String()}},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			s := bodyByName(t, report, tt.body).Surface
			if s == nil {
				t.Fatal("no surface entry")
			}
			if len(tt.wantReason) > 0 {
				if !lo.Contains(tt.wantReason, s.Reason) || s.Error == "" {
					t.Errorf("surface = %+v, want reason %q", s, tt.wantReason)
				}
				return
			}
			if s.Error != "" {
				t.Fatalf("extraction failed: %s", s.Error)
			}
			if s.Name != tt.wantName {
				t.Errorf("name = %q, want %q", s.Name, tt.wantName)
			}
			if !approx(s.Area, tt.wantArea) {
				t.Errorf("area = %v, want %v", s.Area, tt.wantArea)
			}
			if !approx(s.Bounds.Min[2], tt.wantMinZ) || !approx(s.Bounds.Max[2], tt.wantMaxZ) {
				t.Errorf("height = [%v, %v], want [%v, %v]", s.Bounds.Min[2], s.Bounds.Max[2], tt.wantMinZ, tt.wantMaxZ)
			}
		})
	}

	milk := bodyByName(t, report, "milk")
	if diff := cmp.Diff([]ContainmentData{{Body: "fridge", Ratio: 1}}, milk.Inside, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("milk containment mismatch (-want +got):\n%s", diff)
	}
	if len(table.Inside) != 0 {
		t.Errorf("table inside %v", table.Inside)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	a := NewAnalyzer()
	report := a.Analyze("")

	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors for empty source: %v", report.Errors)
	}
	if len(report.Bodies) != 0 {
		t.Errorf("expected 0 bodies for empty source, got %d", len(report.Bodies))
	}
	// Slices stay non-nil so they serialize as [] rather than null.
	if report.Bodies == nil || report.Errors == nil {
		t.Error("Bodies and Errors should be non-nil")
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	a := NewAnalyzer()
	report := a.Analyze(`(body "test"`)

	if len(report.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(report.Bodies) != 0 {
		t.Errorf("expected 0 bodies on error, got %d", len(report.Bodies))
	}
	if report.Errors[0].Message == "" {
		t.Error("error message is empty")
	}
}

// TestE2EBodyWithoutGeometry reports frames that carry no shapes.
func TestE2EBodyWithoutGeometry(t *testing.T) {
	a := NewAnalyzer()
	report := a.Analyze(`(body "anchor" :at (vec3 1 1 1))`)

	if len(report.Bodies) != 1 {
		t.Fatalf("got %d bodies", len(report.Bodies))
	}
	b := report.Bodies[0]
	if b.Parent != "world" {
		t.Errorf("parent = %q", b.Parent)
	}
	if b.Triangles != 0 || len(b.Boxes) != 0 || b.Bounds != nil || b.Surface != nil {
		t.Errorf("unexpected geometry in %+v", b)
	}
	if b.ID == "" {
		t.Error("missing id")
	}
}
