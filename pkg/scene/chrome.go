package scene

// Chrome holds the measured internal layout of a rendered container: the
// content padding applied on both axes and the cumulative height of layout
// elements preceding the content area (header, title bar).
//
// Chrome values are measured by the rendering collaborator against the actual
// rendered container; this package only knows how to carry and combine the
// scalars.
type Chrome struct {
	Padding      float64 `json:"padding" bson:"padding"`
	HeaderHeight float64 `json:"header_height" bson:"header_height"`
}

// ChromeProvider exposes measured container chrome by scene ID.
// A provider returns ok=false for containers whose visual frame does not
// exist yet; consumers treat that as a zero contribution and mark their
// results provisional.
//
// The interface is the seam where the rendering/measurement collaborator
// plugs in, keeping the geometry core independent of any measurement
// technology.
type ChromeProvider interface {
	Chrome(sceneID string) (Chrome, bool)
}

// ChromeMap is a map-backed ChromeProvider, the snapshot form in which
// measurements cross the collaborator boundary.
type ChromeMap map[string]Chrome

// Chrome returns the measured chrome for a scene ID.
func (m ChromeMap) Chrome(sceneID string) (Chrome, bool) {
	c, ok := m[sceneID]
	return c, ok
}
