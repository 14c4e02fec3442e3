package model

import "math"

// Glyph is a single positioned character as reported by the page source.
// Size is the nominal font size in points.
type Glyph struct {
	Text string  `json:"text"`
	BBox BBox    `json:"bbox"`
	Size float64 `json:"size"`
}

// Baseline returns the Y coordinate used for line grouping. The bottom edge
// of the glyph box approximates the text baseline closely enough for
// clustering purposes.
func (g Glyph) Baseline() float64 {
	return g.BBox.Y1
}

// VectorKind identifies the shape of a vector primitive.
type VectorKind int

const (
	VectorLine VectorKind = iota
	VectorRect
	VectorCurve
)

// String returns a human-readable name for the vector kind
func (k VectorKind) String() string {
	switch k {
	case VectorLine:
		return "line"
	case VectorRect:
		return "rect"
	case VectorCurve:
		return "curve"
	default:
		return "unknown"
	}
}

// Vector is a drawing primitive on the page: a line segment, a rectangle, or
// a curve. For lines, Start and End hold the segment endpoints. For rects
// and curves only BBox is meaningful.
type Vector struct {
	Kind  VectorKind `json:"kind"`
	Start Point      `json:"start"`
	End   Point      `json:"end"`
	BBox  BBox       `json:"bbox"`
}

// Angle returns the segment angle in degrees, in the range [0, 90], where 0
// is horizontal and 90 is vertical. Only meaningful for lines.
func (v Vector) Angle() float64 {
	dx := math.Abs(v.End.X - v.Start.X)
	dy := math.Abs(v.End.Y - v.Start.Y)
	if dx == 0 && dy == 0 {
		return 0
	}
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// IsHorizontal reports whether the line deviates less than tol degrees from
// horizontal.
func (v Vector) IsHorizontal(tol float64) bool {
	return v.Kind == VectorLine && v.Angle() < tol
}

// IsVertical reports whether the line deviates less than tol degrees from
// vertical.
func (v Vector) IsVertical(tol float64) bool {
	return v.Kind == VectorLine && 90-v.Angle() < tol
}

// Length returns the segment length. Only meaningful for lines.
func (v Vector) Length() float64 {
	return v.Start.Distance(v.End)
}

// RegionKind classifies a page region. The set is closed: every region a
// classifier emits carries exactly one of these kinds.
type RegionKind int

const (
	RegionUnclassified RegionKind = iota
	RegionTable
	RegionChart
	RegionIgnore
)

// String returns a human-readable name for the region kind
func (k RegionKind) String() string {
	switch k {
	case RegionTable:
		return "table"
	case RegionChart:
		return "chart"
	case RegionIgnore:
		return "ignore"
	default:
		return "unclassified"
	}
}

// Region is a classified rectangular area of a page.
type Region struct {
	BBox       BBox
	Kind       RegionKind
	Confidence float64 // Detection confidence (0-1)
}

// Word is a reconstructed word: one or more adjacent glyphs merged along a
// shared baseline.
type Word struct {
	Text     string
	BBox     BBox
	Size     float64 // Dominant font size of the member glyphs
	Baseline float64
}

// PageData is the raw content of one page as delivered by the upstream page
// source: positioned glyphs, vector primitives, and optionally a rendered
// image of the page for OCR fallback.
type PageData struct {
	Number int     `json:"number"` // 1-based page number
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Glyphs  []Glyph  `json:"glyphs"`
	Vectors []Vector `json:"vectors,omitempty"`

	// Image is an encoded (PNG or JPEG) rendering of the page, used only
	// when the OCR path is taken. May be nil.
	Image []byte `json:"image,omitempty"`
}

// Document is an ordered set of pages belonging to one source file.
type Document struct {
	Path  string     `json:"path"`
	Pages []PageData `json:"pages"`
}
