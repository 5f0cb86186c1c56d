package models

// Record is the result of one accepted commit
type Record struct {
	Edge    EdgeKind
	ImageID string
	Group   string
	Left    []Pixel
	Right   []Pixel
}

// Partition splits picks by insertion index parity: even indices go left, odd go right.
func Partition(picks []Pixel) (left, right []Pixel) {
	left = make([]Pixel, 0, (len(picks)+1)/2)
	right = make([]Pixel, 0, len(picks)/2)
	for i, p := range picks {
		if i%2 == 0 {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	return left, right
}

// NewRecord builds the record for a completed selection. A fovea pit record keeps
// only the even-indexed half.
func NewRecord(kind EdgeKind, imageID, group string, picks []Pixel) Record {
	left, right := Partition(picks)
	if kind == FoveaPit {
		right = nil
	}
	return Record{
		Edge:    kind,
		ImageID: imageID,
		Group:   group,
		Left:    left,
		Right:   right,
	}
}
