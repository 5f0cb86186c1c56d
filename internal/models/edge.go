package models

import "fmt"

// EdgeKind is the closed set of landmark sets a commit can produce
type EdgeKind uint8

const (
	// RPEChorEdge is the RPE-choroid boundary; staged until its ChorSclera counterpart arrives.
	RPEChorEdge EdgeKind = iota + 1
	// ChorScleraEdge is the choroid-sclera boundary; completes a boundary pair.
	ChorScleraEdge
	// FoveaPit is a single-group landmark set with no partner.
	FoveaPit
)

// String returns the label written to the output tables
func (k EdgeKind) String() string {
	switch k {
	case RPEChorEdge:
		return "RPEChor"
	case ChorScleraEdge:
		return "ChorSclera"
	case FoveaPit:
		return "FoveaPit"
	default:
		return "unknown"
	}
}

// Description is the anatomical name of the edge
func (k EdgeKind) Description() string {
	switch k {
	case RPEChorEdge:
		return "RPE-choroid boundary"
	case ChorScleraEdge:
		return "choroid-sclera boundary"
	case FoveaPit:
		return "fovea pit"
	default:
		return "unknown"
	}
}

// IsBoundary reports whether the kind takes part in the two-edge merge
func (k EdgeKind) IsBoundary() bool {
	return k == RPEChorEdge || k == ChorScleraEdge
}

// ParseEdgeKind converts a table label back to an EdgeKind
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch s {
	case "RPEChor":
		return RPEChorEdge, nil
	case "ChorSclera":
		return ChorScleraEdge, nil
	case "FoveaPit":
		return FoveaPit, nil
	default:
		return 0, fmt.Errorf("unknown edge kind %q: %w", s, ErrMalformedPersistedState)
	}
}
