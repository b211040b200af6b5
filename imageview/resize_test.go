package imageview

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	for _, d := range Directions {
		got, err := ParseDirection(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDirection("up")
	assert.Error(t, err)
	assert.True(t, E.Edge())
	assert.False(t, SE.Edge())
}

func TestEdgeHandlesKeepAspectRatio(t *testing.T) {
	for _, ratio := range []float64{1.5, 0.75, 16.0 / 9.0, 1} {
		for _, d := range []Direction{N, S, E, W} {
			s := Session{Direction: d, StartX: 500, StartY: 500, StartWidth: 400, StartHeight: 300, AspectRatio: ratio}
			for delta := -100.0; delta <= 100; delta += 7 {
				size := s.Resize(500+delta, 500+delta, DefaultBounds)
				assert.InDelta(t, size.Width/ratio, size.Height, 1e-9, "dir %s ratio %g delta %g", d, ratio, delta)
			}
		}
	}
}

func TestEdgeFormulas(t *testing.T) {
	s := Session{StartX: 100, StartY: 100, StartWidth: 400, StartHeight: 200, AspectRatio: 2}
	cases := []struct {
		dir  Direction
		x, y float64
		want Size
	}{
		{E, 150, 100, Size{450, 225}},
		{W, 150, 100, Size{350, 175}},
		{S, 100, 150, Size{500, 250}},
		{N, 100, 150, Size{300, 150}},
	}
	for _, c := range cases {
		s.Direction = c.dir
		assert.Equal(t, c.want, s.Resize(c.x, c.y, DefaultBounds), c.dir)
	}
}

func TestClampHoldsForAnyDelta(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		d := Directions[rnd.Intn(len(Directions))]
		s := Session{
			Direction:   d,
			StartWidth:  rnd.Float64() * 3000,
			StartHeight: rnd.Float64() * 3000,
			AspectRatio: 0.1 + rnd.Float64()*5,
		}
		size := s.Resize((rnd.Float64()-0.5)*20000, (rnd.Float64()-0.5)*20000, DefaultBounds)
		w, h := size.Round()
		assert.GreaterOrEqual(t, w, 50)
		assert.LessOrEqual(t, w, 2000)
		assert.GreaterOrEqual(t, h, 50)
		assert.LessOrEqual(t, h, 2000)
	}
}

func TestCornerHandlesAreIndependent(t *testing.T) {
	s := Session{StartX: 10, StartY: 10, StartWidth: 300, StartHeight: 200, AspectRatio: 1.5}
	cases := []struct {
		dir  Direction
		want Size
	}{
		{SE, Size{300, 240}},
		{SW, Size{300, 240}},
		{NE, Size{300, 160}},
		{NW, Size{300, 160}},
	}
	for _, c := range cases {
		s.Direction = c.dir
		assert.Equal(t, c.want, s.Resize(10, 50, DefaultBounds), c.dir)
	}

	s.Direction = NW
	assert.Equal(t, Size{270, 230}, s.Resize(40, -20, DefaultBounds))
}

func TestDegenerateRatioFallsBackToSquare(t *testing.T) {
	s := Session{Direction: E, StartWidth: 100, StartHeight: 300}
	assert.Equal(t, Size{120, 120}, s.Resize(20, 0, DefaultBounds))
}

func TestBounds(t *testing.T) {
	b := Bounds{Min: 10, Max: 20}
	assert.Equal(t, 10.0, b.Clamp(-5))
	assert.Equal(t, 20.0, b.Clamp(99))
	assert.Equal(t, 15.0, b.Clamp(15))
	assert.NoError(t, b.Validate())
	assert.Error(t, Bounds{Min: 0, Max: 10}.Validate())
	assert.Error(t, Bounds{Min: 20, Max: 10}.Validate())
}
