package models

import (
	"errors"
	"slices"
	"testing"
)

func TestPartitionByInsertionParity(t *testing.T) {
	picks := []Pixel{{10, 10}, {20, 10}, {10, 20}, {20, 20}, {30, 30}, {40, 40}}
	left, right := Partition(picks)

	wantLeft := []Pixel{{10, 10}, {10, 20}, {30, 30}}
	wantRight := []Pixel{{20, 10}, {20, 20}, {40, 40}}
	if !slices.Equal(left, wantLeft) {
		t.Errorf("left = %v, want %v", left, wantLeft)
	}
	if !slices.Equal(right, wantRight) {
		t.Errorf("right = %v, want %v", right, wantRight)
	}
}

func TestNewRecordFoveaKeepsEvenHalf(t *testing.T) {
	picks := []Pixel{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	rec := NewRecord(FoveaPit, "7", "Donors", picks)

	if want := []Pixel{{1, 1}, {3, 3}}; !slices.Equal(rec.Left, want) {
		t.Errorf("Left = %v, want %v", rec.Left, want)
	}
	if rec.Right != nil {
		t.Errorf("Right = %v, want nil", rec.Right)
	}
	if rec.ImageID != "7" || rec.Group != "Donors" || rec.Edge != FoveaPit {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestParseEdgeKind(t *testing.T) {
	for _, k := range []EdgeKind{RPEChorEdge, ChorScleraEdge, FoveaPit} {
		got, err := ParseEdgeKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseEdgeKind(%q) = %v, %v", k.String(), got, err)
		}
	}

	if _, err := ParseEdgeKind("Retina"); !errors.Is(err, ErrMalformedPersistedState) {
		t.Errorf("expected ErrMalformedPersistedState, got %v", err)
	}
}
