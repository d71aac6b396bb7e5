// ABOUTME: Tests for device composition counts
// ABOUTME: Verifies grouping, ordering, and percentages

package summary

import (
	"testing"

	"github.com/ptisa/inventory-admin/internal/client"
)

func TestBuild(t *testing.T) {
	devices := []client.Device{
		{Status: "Active", Brand: "Dell"},
		{Status: "Active", Brand: "HP"},
		{Status: "Repair", Brand: "Dell"},
		{Status: " ", Brand: "Lenovo"},
	}

	s := Build(devices)

	if s.Total != 4 {
		t.Errorf("expected total 4, got %d", s.Total)
	}

	wantStatus := []Bucket{{"Active", 2}, {"Repair", 1}, {Unassigned, 1}}
	if len(s.ByStatus) != len(wantStatus) {
		t.Fatalf("expected %d status buckets, got %+v", len(wantStatus), s.ByStatus)
	}
	for i, want := range wantStatus {
		if s.ByStatus[i] != want {
			t.Errorf("status bucket %d: expected %+v, got %+v", i, want, s.ByStatus[i])
		}
	}

	if s.ByBrand[0] != (Bucket{"Dell", 2}) {
		t.Errorf("expected Dell first, got %+v", s.ByBrand[0])
	}
	if s.ByBrand[1].Name != "HP" || s.ByBrand[2].Name != "Lenovo" {
		t.Errorf("expected ties ordered by name, got %+v", s.ByBrand)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		total int
		count int
		want  float64
	}{
		{"half", 4, 2, 50},
		{"all", 3, 3, 100},
		{"empty inventory", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summary{Total: tt.total}
			if got := s.Percent(Bucket{Count: tt.count}); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
