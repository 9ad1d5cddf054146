package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestOrbitingWorldToCamera(t *testing.T) {
	view := OrbitingWorldToCamera(3, 0, 0)
	origin := mgl64.TransformCoordinate(mgl64.Vec3{}, view)
	assert.True(t, origin.ApproxEqualThreshold(mgl64.Vec3{0, 0, -3}, eps), "origin at %v", origin)

	// A quarter azimuth swings +X to the far side of the origin.
	view = OrbitingWorldToCamera(3, math.Pi/2, 0)
	p := mgl64.TransformCoordinate(mgl64.Vec3{1, 0, 0}, view)
	assert.True(t, p.ApproxEqualThreshold(mgl64.Vec3{0, 0, -4}, eps), "x axis at %v", p)

	// A quarter inclination tips +Y toward the eye.
	view = OrbitingWorldToCamera(3, 0, math.Pi/2)
	p = mgl64.TransformCoordinate(mgl64.Vec3{0, 1, 0}, view)
	assert.True(t, p.ApproxEqualThreshold(mgl64.Vec3{0, 0, -2}, eps), "y axis at %v", p)
}

func TestPerspectiveContainsUnitCube(t *testing.T) {
	for _, size := range [][2]int{{100, 100}, {200, 100}, {100, 200}} {
		proj := PerspectiveForUnitCube(size[0], size[1], 3)
		view := OrbitingWorldToCamera(3, 0, 0)
		vp := proj.Mul4(view)
		for _, corner := range []mgl64.Vec3{{1, 1, 1}, {-1, -1, 1}, {1, -1, -1}, {-1, 1, -1}} {
			clip := vp.Mul4x1(corner.Vec4(1))
			ndc := clip.Vec3().Mul(1 / clip[3])
			assert.LessOrEqual(t, math.Abs(ndc[0]), 1.0, "size %v corner %v", size, corner)
			assert.LessOrEqual(t, math.Abs(ndc[1]), 1.0, "size %v corner %v", size, corner)
			assert.GreaterOrEqual(t, ndc[2], 0.0)
			assert.LessOrEqual(t, ndc[2], 1.0)
		}
	}
}

func TestDragRotatesAndClamps(t *testing.T) {
	oc := NewOrbitController()
	oc.Drag(50, 50, 200, 100)
	assert.Equal(t, mgl64.Vec2{}, oc.Rotation(), "drag without press")

	oc.Press(0, 0)
	require.True(t, oc.Dragging())
	oc.Drag(100, 50, 200, 100)
	r := oc.Rotation()
	assert.InDelta(t, math.Pi, r[0], eps)
	assert.InDelta(t, math.Pi/2, r[1], eps)

	oc.Drag(100, 150, 200, 100)
	assert.InDelta(t, math.Pi/2, oc.Rotation()[1], eps)
	oc.Drag(100, -50, 200, 100)
	assert.InDelta(t, -math.Pi/2, oc.Rotation()[1], eps)

	oc.Release()
	oc.Drag(0, 0, 200, 100)
	assert.InDelta(t, math.Pi, oc.Rotation()[0], eps)

	oc.Reset()
	assert.Equal(t, mgl64.Vec2{}, oc.Rotation())
}

func TestCameraFollowsController(t *testing.T) {
	oc := NewOrbitController(WithRotation(math.Pi/2, 0))
	c := NewCamera(WithController(oc), WithViewport(640, 480))

	p := mgl64.TransformCoordinate(mgl64.Vec3{1, 0, 0}, c.ViewMatrix())
	assert.True(t, p.ApproxEqualThreshold(mgl64.Vec3{0, 0, -4}, eps))

	oc.SetRotation(mgl64.Vec2{0, 0})
	c.Update()
	p = mgl64.TransformCoordinate(mgl64.Vec3{1, 0, 0}, c.ViewMatrix())
	assert.True(t, p.ApproxEqualThreshold(mgl64.Vec3{1, 0, -3}, eps))

	c.SetViewport(0, 480)
	w, h := c.Viewport()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestStoreUniforms(t *testing.T) {
	c := NewCamera()
	set := uniform.NewSet()
	c.StoreUniforms(set)

	proj, ok := set.Get(UniformProjection)
	require.True(t, ok)
	assert.Equal(t, uniform.KindMat4, proj.Kind)
	normal, ok := set.Get(UniformNormal)
	require.True(t, ok)
	assert.Equal(t, uniform.KindMat3, normal.Kind)
	_, ok = set.Get(UniformView)
	assert.True(t, ok)
}
