package photon

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-photonmap/pkg/core"
)

// RecordSize is the packed size of a Record in the photon file, including
// the trailing pad byte of the native struct layout.
const RecordSize = 20

// axisMask selects the split axis stored in Record.Info
const axisMask = 0x03

// RGBE is a colour compressed to a shared exponent
type RGBE [4]uint8

// Record is one stored photon. It is immutable once deposited, except for
// Info which the tree builder uses to record the split axis of the node.
type Record struct {
	Loc   [3]float32 // position
	Color RGBE       // compressed colour and intensity
	Info  uint8      // split axis, written by BuildTree
	Theta int8       // incoming direction, polar angle
	Phi   int8       // incoming direction, azimuth
}

// NewRecord packs a photon arriving at point from direction dir with the given colour
func NewRecord(point, color, dir core.Vec3) Record {
	theta, phi := EncodeDirection(dir)
	return Record{
		Loc:   [3]float32{float32(point.X), float32(point.Y), float32(point.Z)},
		Color: EncodeRGBE(color),
		Theta: theta,
		Phi:   phi,
	}
}

// Position returns the photon location
func (r *Record) Position() core.Vec3 {
	return core.NewVec3(float64(r.Loc[0]), float64(r.Loc[1]), float64(r.Loc[2]))
}

// Colour returns the decoded photon colour
func (r *Record) Colour() core.Vec3 {
	return DecodeRGBE(r.Color)
}

// Direction returns the decoded unit incoming direction
func (r *Record) Direction() core.Vec3 {
	return DecodeDirection(r.Theta, r.Phi)
}

// Axis returns the kd-tree split axis recorded for this photon
func (r *Record) Axis() int {
	return int(r.Info & axisMask)
}

// EncodeRGBE compresses a colour to RGBE. Colours whose largest component
// is negligible or not finite encode as black.
func EncodeRGBE(c core.Vec3) RGBE {
	v := float32(c.MaxComponent())
	if !(v >= 1e-32) || math32.IsInf(v, 1) {
		return RGBE{}
	}
	frac, exp := math32.Frexp(v)
	scale := frac * 256.0 / v
	return RGBE{
		uint8(max(0, float32(c.X)*scale)),
		uint8(max(0, float32(c.Y)*scale)),
		uint8(max(0, float32(c.Z)*scale)),
		uint8(exp + 128),
	}
}

// DecodeRGBE expands an RGBE colour
func DecodeRGBE(e RGBE) core.Vec3 {
	if e[3] == 0 {
		return core.Vec3{}
	}
	f := math32.Ldexp(1.0, int(e[3])-(128+8))
	return core.NewVec3(
		float64((float32(e[0])+0.5)*f),
		float64((float32(e[1])+0.5)*f),
		float64((float32(e[2])+0.5)*f),
	)
}

// EncodeDirection packs a unit direction into two signed bytes:
// theta = acos(y) over [-127,127], phi = atan2(x,z) over [-127,127].
func EncodeDirection(dir core.Vec3) (theta, phi int8) {
	d := dir.Normalize()
	y := math32.Max(-1, math32.Min(1, float32(d.Y)))
	t := math32.Acos(y)/math32.Pi*254 - 127
	p := math32.Atan2(float32(d.X), float32(d.Z)) / math32.Pi * 127
	return int8(math32.Round(t)), int8(math32.Round(p))
}

// DecodeDirection expands a packed direction to a unit vector
func DecodeDirection(theta, phi int8) core.Vec3 {
	t := (float32(theta) + 127) / 254 * math32.Pi
	p := float32(phi) / 127 * math32.Pi
	sinT := math32.Sin(t)
	return core.NewVec3(
		float64(sinT*math32.Sin(p)),
		float64(math32.Cos(t)),
		float64(sinT*math32.Cos(p)),
	)
}
