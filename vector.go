package dynamica

import "github.com/go-gl/mathgl/mgl64"

// Vec3 is the double-precision 3-vector used throughout the core. The
// teacher engine uses mgl32.Vec3 for render-space coordinates; the
// simulation core needs mgl64's double precision to hold spec.md's
// 10^-8 / 10^-9 conservation bounds over long event sequences.
type Vec3 = mgl64.Vec3

// Mat3 is the double-precision 3x3 matrix alias. It is not referenced
// elsewhere in the package (NOrientationLiouvillean streams orientation
// as a Vec3).
type Mat3 = mgl64.Mat3

func vzero() Vec3 { return Vec3{0, 0, 0} }

// clampSmall zeroes every component whose magnitude is below eps. No
// BC or Liouvillean in this package calls it.
func clampSmall(v Vec3, eps float64) Vec3 {
	for i := 0; i < 3; i++ {
		if v[i] > -eps && v[i] < eps {
			v[i] = 0
		}
	}
	return v
}
