// Package coords implements the affine transforms used to express match
// rectangles in a page's unrotated content space.
package coords

import (
	"errors"
	"math"
)

// Matrix is a 2x3 affine transformation matrix [a b c d e f].
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Multiply returns m * o.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Point is a position in page coordinate space.
type Point struct{ X, Y float64 }

// Transform maps p through the matrix.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Inverse returns the inverse transform, or an error for singular matrices.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errors.New("matrix singular")
	}
	return Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// IsIdentity reports whether the matrix is (numerically) the identity.
func (m Matrix) IsIdentity() bool {
	id := Identity()
	for i := range m {
		if math.Abs(m[i]-id[i]) > 1e-10 {
			return false
		}
	}
	return true
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Rotate returns a rotation matrix for the given angle in radians.
func Rotate(angle float64) Matrix {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return Matrix{c, s, -s, c, 0, 0}
}

// RotationDegrees returns the transform for a page /Rotate value (a multiple
// of 90) on a page of the given width and height, mapping unrotated content
// space into the rotated view.
func RotationDegrees(deg int, width, height float64) Matrix {
	switch ((deg % 360) + 360) % 360 {
	case 90:
		return Matrix{0, 1, -1, 0, height, 0}
	case 180:
		return Matrix{-1, 0, 0, -1, width, height}
	case 270:
		return Matrix{0, -1, 1, 0, 0, width}
	default:
		return Identity()
	}
}
