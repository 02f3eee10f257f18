package pose

import "math"

// Angle returns the angle in degrees at vertex p2 formed by p1 and p3.
// The result always lies in [0, 180]. Coincident points do not fail; they
// yield whatever the atan2 difference produces (0 when all three coincide).
func Angle(p1, p2, p3 Point2D) float64 {
	radians := math.Atan2(p3.Y-p2.Y, p3.X-p2.X) - math.Atan2(p1.Y-p2.Y, p1.X-p2.X)
	angle := math.Abs(radians * 180.0 / math.Pi)

	if angle > 180.0 {
		angle = 360.0 - angle
	}

	return angle
}

// jointAngle is Angle over three frame landmarks. Callers check presence.
func jointAngle(f Frame, a, vertex, b int) float64 {
	return Angle(f[a].Point(), f[vertex].Point(), f[b].Point())
}
