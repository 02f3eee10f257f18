package pose

// Range is an inclusive angle band in degrees.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Thresholds describes the nominal joint ranges of one pose.
// A nil Hip means the pose places no constraint on the hip.
type Thresholds struct {
	Knee Range  `json:"knee"`
	Hip  *Range `json:"hip,omitempty"`
}

// ReferenceThresholds returns the documented joint ranges for each pose.
//
// The table is descriptive. Classify does not read it; the ordered rules in
// classifier.go decide the label, and the two disagree in places (the table
// bounds T-pose hips, the rules do not look at them).
func ReferenceThresholds() map[Type]Thresholds {
	hip := func(min, max float64) *Range { return &Range{Min: min, Max: max} }

	return map[Type]Thresholds{
		DeepSquat:           {Knee: Range{50, 95}, Hip: hip(50, 100)},
		PartialSquat:        {Knee: Range{95, 150}, Hip: hip(70, 130)},
		Standing:            {Knee: Range{150, 180}, Hip: hip(160, 180)},
		SingleLegSquatLeft:  {Knee: Range{50, 95}, Hip: hip(50, 100)},
		SingleLegSquatRight: {Knee: Range{50, 95}, Hip: hip(50, 100)},
		LungeLeft:           {Knee: Range{80, 100}, Hip: hip(90, 140)},
		LungeRight:          {Knee: Range{80, 100}, Hip: hip(90, 140)},
		ForwardBend:         {Knee: Range{150, 180}, Hip: hip(30, 90)},
		TPose:               {Knee: Range{160, 180}, Hip: hip(160, 180)},
		Unknown:             {Knee: Range{0, 180}},
	}
}
