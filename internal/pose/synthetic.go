package pose

import "math"

// Posture describes a body by its joint angles, in degrees.
type Posture struct {
	RightKnee float64
	LeftKnee  float64
	RightHip  float64
	LeftHip   float64
	// LevelShoulders puts both shoulders at the same height, which the
	// classifier reads as arms spread (shoulder angle 180). Otherwise the
	// right shoulder sits lower.
	LevelShoulders bool
}

// Segment lengths and placement for synthesized frames, in normalized units.
const (
	synthThigh     = 0.2
	synthShin      = 0.2
	synthTorso     = 0.25
	synthTilt      = 0.1
	synthLeftHipX  = 0.6
	synthRightHipX = 0.4
	synthHipY      = 0.5
	synthVisible   = 0.99
)

// Synthesize builds a complete frame whose joints measure the requested
// angles. Thighs hang straight down from the hips; each shin and torso is
// rotated away from its thigh by the knee and hip angle respectively.
func Synthesize(p Posture) Frame {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	cosL, cosR := math.Cos(rad(p.LeftHip)), math.Cos(rad(p.RightHip))

	// Shift the right hip so the shoulders land at the intended heights
	// regardless of how far each torso leans.
	rightHipY := synthHipY + synthTorso*(cosL-cosR)
	if !p.LevelShoulders {
		rightHipY += synthTilt
	}

	f := make(Frame, NumLandmarks)
	placeLeg(f, LeftHip, LeftKnee, LeftAnkle, LeftShoulder,
		Point2D{X: synthLeftHipX, Y: synthHipY}, rad(p.LeftKnee), rad(p.LeftHip))
	placeLeg(f, RightHip, RightKnee, RightAnkle, RightShoulder,
		Point2D{X: synthRightHipX, Y: rightHipY}, rad(p.RightKnee), rad(p.RightHip))

	// Everything the classifier ignores sits between the shoulders.
	mid := Point2D{
		X: (f[LeftShoulder].X + f[RightShoulder].X) / 2,
		Y: (f[LeftShoulder].Y + f[RightShoulder].Y) / 2,
	}
	for i := range f {
		if f[i] == nil {
			f[i] = synthLandmark(mid)
		}
	}

	return f
}

func placeLeg(f Frame, hipIdx, kneeIdx, ankleIdx, shoulderIdx int, hip Point2D, knee, hipAngle float64) {
	kneePt := Point2D{X: hip.X, Y: hip.Y + synthThigh}
	anklePt := Point2D{
		X: kneePt.X + synthShin*math.Sin(knee),
		Y: kneePt.Y - synthShin*math.Cos(knee),
	}
	shoulderPt := Point2D{
		X: hip.X - synthTorso*math.Sin(hipAngle),
		Y: hip.Y + synthTorso*math.Cos(hipAngle),
	}

	f[hipIdx] = synthLandmark(hip)
	f[kneeIdx] = synthLandmark(kneePt)
	f[ankleIdx] = synthLandmark(anklePt)
	f[shoulderIdx] = synthLandmark(shoulderPt)
}

func synthLandmark(p Point2D) *Landmark {
	v := synthVisible
	return &Landmark{X: p.X, Y: p.Y, Visibility: &v}
}
