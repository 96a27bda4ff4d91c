package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Block is a single voxel cell. The zero value is air.
type Block struct {
	Material MaterialID
}

// IsAir checks if the block references the air material
func (b Block) IsAir() bool {
	return b.Material == AirID
}

// Direction identifies one of the six axis-aligned faces of a voxel.
type Direction int

const (
	XPositive Direction = iota
	XNegative
	YPositive
	YNegative
	ZPositive
	ZNegative

	NumDirections = 6
)

// Directions lists every face direction in index order.
var Directions = [NumDirections]Direction{
	XPositive, XNegative,
	YPositive, YNegative,
	ZPositive, ZNegative,
}

var directionNames = [NumDirections]string{"+x", "-x", "+y", "-y", "+z", "-z"}

func (d Direction) String() string {
	if !d.Valid() {
		return "invalid"
	}
	return directionNames[d]
}

// Valid reports whether d is one of the six directions.
func (d Direction) Valid() bool {
	return d >= XPositive && d <= ZNegative
}

// IsPositive reports whether the direction points along +axis.
func (d Direction) IsPositive() bool {
	return d%2 == 0
}

// IsNegative reports whether the direction points along -axis.
func (d Direction) IsNegative() bool {
	return !d.IsPositive()
}

// Axis returns 0, 1 or 2 for x, y or z.
func (d Direction) Axis() int {
	return int(d) / 2
}

// Opposite returns the direction facing the other way on the same axis.
func (d Direction) Opposite() Direction {
	return d ^ 1
}

// Sign returns +1 or -1.
func (d Direction) Sign() int {
	if d.IsPositive() {
		return 1
	}
	return -1
}

// Offset returns the unit step to the adjacent voxel in this direction.
func (d Direction) Offset() [3]int {
	var o [3]int
	o[d.Axis()] = d.Sign()
	return o
}

// Normal returns the outward unit normal of a face pointing in this direction.
func (d Direction) Normal() mgl32.Vec3 {
	var n mgl32.Vec3
	n[d.Axis()] = float32(d.Sign())
	return n
}

// PlaneAxes returns the two axes perpendicular to the direction, in x, y, z order.
// u is the first varying axis of a face rectangle, v the second.
func (d Direction) PlaneAxes() (u, v int) {
	switch d.Axis() {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// DirectionFor returns the direction for an axis and sign.
func DirectionFor(axis int, positive bool) Direction {
	d := Direction(axis * 2)
	if !positive {
		d++
	}
	return d
}
