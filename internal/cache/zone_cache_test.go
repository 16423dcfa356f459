package cache

import (
	"testing"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

func TestZoneCacheLocal(t *testing.T) {
	c := NewZoneCache("")

	if _, ok := c.Get("z-1"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	z := domain.Zone{ID: "z-1", City: "milan", ZoneAnalysis: domain.ZoneAnalysis{ZoneName: "Navigli", AvgPricePerNight: 85}}
	c.Set(z)

	got, ok := c.Get("z-1")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got.ZoneName != "Navigli" || got.AvgPricePerNight != 85 {
		t.Fatalf("got=%+v", got)
	}

	c.Delete("z-1")
	if _, ok := c.Get("z-1"); ok {
		t.Fatal("unexpected hit after Delete")
	}
}
