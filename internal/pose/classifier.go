package pose

import "fmt"

// Type is a discrete body posture label.
type Type string

const (
	Unknown             Type = "unknown"
	Standing            Type = "standing"
	DeepSquat           Type = "deep_squat"
	PartialSquat        Type = "partial_squat"
	SingleLegSquatLeft  Type = "single_leg_squat_left"
	SingleLegSquatRight Type = "single_leg_squat_right"
	LungeLeft           Type = "lunge_left"
	LungeRight          Type = "lunge_right"
	ForwardBend         Type = "forward_bend"
	TPose               Type = "t_pose"
)

var allTypes = []Type{
	Unknown,
	Standing,
	DeepSquat,
	PartialSquat,
	SingleLegSquatLeft,
	SingleLegSquatRight,
	LungeLeft,
	LungeRight,
	ForwardBend,
	TPose,
}

// AllTypes returns every pose label in declaration order.
func AllTypes() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// ParseType converts a label string into a Type.
func ParseType(s string) (Type, error) {
	for _, t := range allTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown pose type %q", s)
}

// Angles holds the joint angles, in degrees, the classifier works from.
type Angles struct {
	RightKnee float64 `json:"right_knee"`
	LeftKnee  float64 `json:"left_knee"`
	RightHip  float64 `json:"right_hip"`
	LeftHip   float64 `json:"left_hip"`
	Shoulder  float64 `json:"shoulder"`
}

// requiredLandmarks are the joints every rule depends on.
var requiredLandmarks = []int{
	LeftShoulder, RightShoulder,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
}

// Measure computes the classifier angles for a frame. It returns false when
// the frame is shorter than a full body model or a required joint is absent.
func Measure(f Frame) (Angles, bool) {
	if len(f) < NumLandmarks || !f.Has(requiredLandmarks...) {
		return Angles{}, false
	}

	leftShoulder := f[LeftShoulder]
	rightShoulder := f[RightShoulder]

	// The vertex takes the left shoulder's height, not the true midpoint.
	// Level shoulders therefore measure 180 and any tilt pulls it down.
	vertex := Point2D{
		X: (leftShoulder.X + rightShoulder.X) / 2,
		Y: leftShoulder.Y,
	}

	return Angles{
		RightKnee: jointAngle(f, RightHip, RightKnee, RightAnkle),
		LeftKnee:  jointAngle(f, LeftHip, LeftKnee, LeftAnkle),
		RightHip:  jointAngle(f, RightShoulder, RightHip, RightKnee),
		LeftHip:   jointAngle(f, LeftShoulder, LeftHip, LeftKnee),
		Shoulder:  Angle(leftShoulder.Point(), vertex, rightShoulder.Point()),
	}, true
}

// rule pairs a label with the predicate that selects it.
type rule struct {
	pose  Type
	match func(a Angles) bool
}

// rules is evaluated top to bottom and the first match wins. Order matters:
// later predicates overlap earlier ones.
var rules = []rule{
	{TPose, func(a Angles) bool {
		return a.Shoulder > 160 && a.RightKnee > 160 && a.LeftKnee > 160
	}},
	{ForwardBend, func(a Angles) bool {
		return a.RightHip < 90 && a.LeftHip < 90 && a.RightKnee > 150 && a.LeftKnee > 150
	}},
	{DeepSquat, func(a Angles) bool {
		return a.RightKnee < 95 && a.LeftKnee < 95
	}},
	{PartialSquat, func(a Angles) bool {
		return a.RightKnee < 150 && a.LeftKnee < 150
	}},
	{SingleLegSquatRight, func(a Angles) bool {
		return a.RightKnee < 95 && a.LeftKnee > 150
	}},
	{SingleLegSquatLeft, func(a Angles) bool {
		return a.LeftKnee < 95 && a.RightKnee > 150
	}},
	{LungeRight, func(a Angles) bool {
		return a.RightKnee < 100 && a.LeftKnee > 150
	}},
	{LungeLeft, func(a Angles) bool {
		return a.LeftKnee < 100 && a.RightKnee > 150
	}},
	{Standing, func(a Angles) bool {
		return a.RightKnee > 150 && a.LeftKnee > 150
	}},
}

// Rules returns the labels of the decision list in evaluation order.
// Unknown is the fallthrough and is not included.
func Rules() []Type {
	out := make([]Type, len(rules))
	for i, r := range rules {
		out[i] = r.pose
	}
	return out
}

// ClassifyAngles runs the ordered decision list over precomputed angles.
func ClassifyAngles(a Angles) Type {
	for _, r := range rules {
		if r.match(a) {
			return r.pose
		}
	}
	return Unknown
}

// Classify maps a landmark frame to exactly one pose. Incomplete frames
// classify as Unknown.
func Classify(f Frame) Type {
	a, ok := Measure(f)
	if !ok {
		return Unknown
	}
	return ClassifyAngles(a)
}
