package motion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
)

// fixedTarget reports the same element everywhere on screen.
type fixedTarget struct{ id string }

func (f *fixedTarget) ElementAt(x, y float64) (string, bool) {
	return f.id, f.id != ""
}

type poseFunc func([]detector.Point3D) bool

func (f poseFunc) IsPointing(points []detector.Point3D) bool { return f(points) }

func pinch() []detector.Point3D {
	h := detector.PinchLandmarks()
	return h.Points[:]
}

func open() []detector.Point3D {
	h := detector.OpenHandLandmarks()
	return h.Points[:]
}

func TestNewClicker(t *testing.T) {
	cfg := DefaultClickConfig()
	hit := &fixedTarget{id: "a"}
	poses := poseFunc(func([]detector.Point3D) bool { return false })

	c, err := NewClicker(StrategyPinch, cfg, hit, nil)
	require.NoError(t, err)
	require.IsType(t, &PinchClick{}, c)

	c, err = NewClicker(StrategyPoint, cfg, nil, poses)
	require.NoError(t, err)
	require.IsType(t, &PointClick{}, c)

	_, err = NewClicker(StrategyPinch, cfg, nil, nil)
	require.Error(t, err)
	_, err = NewClicker(StrategyPoint, cfg, hit, nil)
	require.Error(t, err)
	_, err = NewClicker("wave", cfg, hit, poses)
	require.Error(t, err)
}

func TestCursorMapping(t *testing.T) {
	cfg := DefaultClickConfig()
	c := cursor{config: cfg}

	x, y := c.update(detector.Point3D{X: 0.25, Y: 0.5})
	require.InDelta(t, 0.75*1920, x, 1e-9, "X is mirrored")
	require.InDelta(t, 540, y, 1e-9)

	// Second sample is blended with the first.
	x, _ = c.update(detector.Point3D{X: 0.75, Y: 0.5})
	require.InDelta(t, 0.5*(0.75*1920)+0.5*(0.25*1920), x, 1e-9)

	cfg.MirrorX = false
	c = cursor{config: cfg}
	x, _ = c.update(detector.Point3D{X: 0.25, Y: 0.5})
	require.InDelta(t, 480, x, 1e-9)
}

func TestPinchClick_RequiresDwellAndPinch(t *testing.T) {
	cfg := DefaultClickConfig()
	p := NewPinchClick(cfg, &fixedTarget{id: "play-button"})

	// Hover without pinching for longer than the dwell.
	for i := 0; i <= 5; i++ {
		_, ok := p.Update(open(), ms(i*100), true)
		require.False(t, ok, "no click without a pinch")
	}

	// Pinch now: dwell already satisfied, so the click fires.
	click, ok := p.Update(pinch(), ms(600), true)
	require.True(t, ok)
	require.Equal(t, "play-button", click.Target)
	require.Equal(t, ms(600), click.At)

	// Hover state was reset: holding the pinch does not click again.
	_, ok = p.Update(pinch(), ms(700), true)
	require.False(t, ok)
}

func TestPinchClick_PinchBeforeDwellWaits(t *testing.T) {
	cfg := DefaultClickConfig()
	p := NewPinchClick(cfg, &fixedTarget{id: "x"})

	for _, at := range []int{0, 100, 200, 300} {
		_, ok := p.Update(pinch(), ms(at), true)
		require.False(t, ok, "dwell not reached at %dms", at)
	}
	_, ok := p.Update(pinch(), ms(400), true)
	require.True(t, ok)
}

func TestPinchClick_TargetChangeResetsDwell(t *testing.T) {
	cfg := DefaultClickConfig()
	hit := &fixedTarget{id: "first"}
	p := NewPinchClick(cfg, hit)

	p.Update(pinch(), ms(0), true)
	p.Update(pinch(), ms(300), true)

	hit.id = "second"
	_, ok := p.Update(pinch(), ms(350), true)
	require.False(t, ok)
	target, since := p.Hovered()
	require.Equal(t, "second", target)
	require.Equal(t, ms(350), since)

	_, ok = p.Update(pinch(), ms(700), true)
	require.False(t, ok, "only 350ms on the new target")
	click, ok := p.Update(pinch(), ms(750), true)
	require.True(t, ok)
	require.Equal(t, "second", click.Target)
}

func TestPinchClick_NoTargetNoClick(t *testing.T) {
	p := NewPinchClick(DefaultClickConfig(), &fixedTarget{})
	for i := 0; i < 10; i++ {
		_, ok := p.Update(pinch(), ms(i*100), true)
		require.False(t, ok)
	}
}

func TestPinchClick_Cooldown(t *testing.T) {
	cfg := DefaultClickConfig()
	cfg.Dwell = 0
	p := NewPinchClick(cfg, &fixedTarget{id: "x"})

	_, ok := p.Update(pinch(), ms(0), true)
	require.True(t, ok)
	_, ok = p.Update(pinch(), ms(100), true)
	require.False(t, ok, "inside cooldown")
	_, ok = p.Update(pinch(), ms(800), true)
	require.True(t, ok)
}

func TestPinchClick_GateResets(t *testing.T) {
	p := NewPinchClick(DefaultClickConfig(), &fixedTarget{id: "x"})
	p.Update(pinch(), ms(0), true)
	p.Update(pinch(), ms(300), true)

	p.Update(nil, ms(350), false)
	_, _, valid := p.Cursor()
	require.False(t, valid)

	// Dwell restarts from the first frame after the gap.
	_, ok := p.Update(pinch(), ms(400), true)
	require.False(t, ok)
	_, ok = p.Update(pinch(), ms(800), true)
	require.True(t, ok)
}

func TestPointClick_FiresOnTransition(t *testing.T) {
	cfg := DefaultClickConfig()
	pointing := false
	poses := poseFunc(func([]detector.Point3D) bool { return pointing })
	p := NewPointClick(cfg, &fixedTarget{id: "card-3"}, poses)

	step := func(at int, point bool) bool {
		pointing = point
		_, ok := p.Update(open(), ms(at), true)
		return ok
	}

	require.False(t, step(0, false))
	require.True(t, step(33, true), "entering the pose clicks")
	require.False(t, step(66, true), "holding the pose does not")
	require.False(t, step(100, false))
	require.False(t, step(200, true), "inside cooldown")
	require.False(t, step(300, false))
	require.True(t, step(900, true))
}

func TestPointClick_CarriesTarget(t *testing.T) {
	poses := poseFunc(func([]detector.Point3D) bool { return true })

	p := NewPointClick(DefaultClickConfig(), &fixedTarget{id: "tile"}, poses)
	click, ok := p.Update(open(), ms(0), true)
	require.True(t, ok)
	require.Equal(t, "tile", click.Target)

	p = NewPointClick(DefaultClickConfig(), nil, poses)
	click, ok = p.Update(open(), ms(0), true)
	require.True(t, ok)
	require.Empty(t, click.Target)
	require.Greater(t, click.X, 0.0)
}

func TestPointClick_GateClearsPose(t *testing.T) {
	poses := poseFunc(func([]detector.Point3D) bool { return true })
	p := NewPointClick(DefaultClickConfig(), nil, poses)

	_, ok := p.Update(open(), ms(0), true)
	require.True(t, ok)
	p.Update(nil, ms(100), false)
	// Re-entering after the hand left counts as a new transition once cooled down.
	_, ok = p.Update(open(), ms(1000), true)
	require.True(t, ok)
}
