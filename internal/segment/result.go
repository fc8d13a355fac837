package segment

// Mask is per-region metadata reported by the backend for one kept mask
// candidate. BBox is [x, y, width, height] in pixels of the source image.
type Mask struct {
	Score     float64 `json:"score"`
	Stability float64 `json:"stability,omitempty"`
	Area      int     `json:"area"`
	BBox      [4]int  `json:"bbox"`
}

// Result is what one backend invocation produced. OverlayBytes holds the
// encoded overlay image as delivered by the backend (OverlayMIME declares its
// encoding); it may be empty when the backend reported only mask metadata, in
// which case the response encoder renders an overlay itself. Masks preserves
// the backend's ordering.
type Result struct {
	OverlayBytes []byte
	OverlayMIME  string
	Masks        []Mask
}
