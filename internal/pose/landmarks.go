// Package pose computes joint angles from body landmarks and classifies
// postures into a fixed set of exercise poses.
package pose

// Body landmark indices following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// Point2D is a planar point. Only X and Y take part in angle computation.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmark is a single body landmark in normalized image coordinates.
type Landmark struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z,omitempty"`
	Visibility *float64 `json:"visibility,omitempty"` // nil when the model gave no score
}

// Point returns the planar projection of the landmark.
func (l *Landmark) Point() Point2D {
	return Point2D{X: l.X, Y: l.Y}
}

// Frame is one set of body landmarks indexed by the constants above.
// A nil entry marks a landmark the source did not provide.
type Frame []*Landmark

// At returns the landmark at index i, or nil if it is absent or out of range.
func (f Frame) At(i int) *Landmark {
	if i < 0 || i >= len(f) {
		return nil
	}
	return f[i]
}

// Has reports whether every listed landmark is present.
func (f Frame) Has(indices ...int) bool {
	for _, i := range indices {
		if f.At(i) == nil {
			return false
		}
	}
	return true
}

// WithMinVisibility returns a copy of the frame in which landmarks with a
// known visibility below min are dropped. Landmarks without a score are kept.
// A min of zero or less returns the frame unchanged.
func (f Frame) WithMinVisibility(min float64) Frame {
	if min <= 0 || f == nil {
		return f
	}

	filtered := make(Frame, len(f))
	for i, l := range f {
		if l != nil && l.Visibility != nil && *l.Visibility < min {
			continue
		}
		filtered[i] = l
	}
	return filtered
}
