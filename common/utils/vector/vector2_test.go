package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector2Arithmetic(t *testing.T) {
	a := MakeVector2(3, 4)
	b := MakeVector2(-1, 2)

	assert.Equal(t, MakeVector2(2, 6), a.Add(b))
	assert.Equal(t, MakeVector2(4, 2), a.Sub(b))
	assert.Equal(t, MakeVector2(-3, -4), a.Neg())
	assert.Equal(t, MakeVector2(6, 8), a.MultScalar(2))
	assert.Equal(t, MakeVector2(1.5, 2), a.DivScalar(2))

	// Value receivers never mutate the original.
	assert.Equal(t, MakeVector2(3, 4), a)
}

func TestVector2Products(t *testing.T) {
	a := MakeVector2(3, 4)
	b := MakeVector2(-1, 2)

	assert.Equal(t, 5.0, a.Dot(b))
	assert.Equal(t, 10.0, a.Cross(b))
	assert.Equal(t, 25.0, a.MagSq())
	assert.Equal(t, 5.0, a.Mag())
}

func TestVector2Normalize(t *testing.T) {
	assert.Equal(t, MakeVector2(0.6, 0.8), MakeVector2(3, 4).Normalize())

	// A null vector stays null instead of dividing by zero.
	assert.Equal(t, MakeNullVector2(), MakeNullVector2().Normalize())
}

func TestVector2Limit(t *testing.T) {
	limited := MakeVector2(3, 4).Limit(2.5)
	assert.InDelta(t, 2.5, limited.Mag(), 1e-12)

	untouched := MakeVector2(1, 1).Limit(2.5)
	assert.Equal(t, MakeVector2(1, 1), untouched)
}

func TestVector2Orthogonals(t *testing.T) {
	a := MakeVector2(2, 1)

	assert.Equal(t, MakeVector2(1, -2), a.OrthogonalClockwise())
	assert.Equal(t, MakeVector2(-1, 2), a.OrthogonalCounterClockwise())

	assert.Equal(t, 0.0, a.Dot(a.OrthogonalClockwise()))
}

func TestVector2Equals(t *testing.T) {
	assert.True(t, MakeVector2(1, 2).Equals(MakeVector2(1, 2)))
	assert.True(t, MakeVector2(1, 2).Equals(MakeVector2(1+1e-9, 2)))
	assert.False(t, MakeVector2(1, 2).Equals(MakeVector2(1.1, 2)))
}

func TestVector2MarshalJSON(t *testing.T) {
	data, err := MakeVector2(1.5, -2.25).MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "[1.5000,-2.2500]", string(data))
}

func TestMakeRandomVector2IsUnit(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := MakeRandomVector2()
		assert.InDelta(t, 1.0, v.Mag(), 1e-9)
	}
}

func TestVector2Angles(t *testing.T) {
	a := MakeVector2(1, 0)
	rotated := a.OrthogonalCounterClockwise()

	assert.InDelta(t, math.Pi/2, math.Atan2(rotated.GetY(), rotated.GetX()), 1e-12)
}
