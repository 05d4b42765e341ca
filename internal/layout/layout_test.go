package layout

import (
	"math"
	"testing"

	"scenecraft/internal/domain"
)

func sampleScenes() []domain.Scene {
	s := domain.NormalizeScene(domain.Scene{
		Background: domain.Background{Src: []domain.Media{{AssetID: 1, Type: "video"}}},
		Time:       5,
	})
	s.SubScenes[0].Location = domain.Anchor{CenterX: 700, StartY: 300}
	s.SubScenes[0].Font.Size = 40
	return []domain.Scene{s}
}

func TestResolveTable(t *testing.T) {
	cases := []struct {
		ar            domain.AspectRatio
		anchor        domain.Anchor
		size          float64
		maxWidth      string
		mode          string
		fullWidth     bool
		width, height int
	}{
		{domain.Square, domain.Anchor{CenterX: 540, StartY: 850}, 22, "80%", "fit", true, 1080, 1080},
		{domain.Portrait, domain.Anchor{CenterX: 540, StartY: 1500}, 22, "50%", "crop", true, 1080, 1920},
		{domain.Landscape, domain.Anchor{CenterX: 700, StartY: 300}, 28, "80%", "crop", false, 1920, 1080},
	}
	for _, c := range cases {
		out := Resolve(sampleScenes(), c.ar)
		ss := out[0].SubScenes[0]
		if ss.Location != c.anchor {
			t.Fatalf("%s anchor = %+v, want %+v", c.ar, ss.Location, c.anchor)
		}
		if ss.Font.Size != c.size || ss.MaxWidth != c.maxWidth || ss.Font.FullWidth != c.fullWidth {
			t.Fatalf("%s font/width = %v %q %v", c.ar, ss.Font.Size, ss.MaxWidth, ss.Font.FullWidth)
		}
		if out[0].Background.Src[0].Mode != c.mode {
			t.Fatalf("%s mode = %q", c.ar, out[0].Background.Src[0].Mode)
		}
		w, h := OutputSize(c.ar)
		if w != c.width || h != c.height {
			t.Fatalf("%s output = %dx%d", c.ar, w, h)
		}
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	in := sampleScenes()
	_ = Resolve(in, domain.Portrait)
	if in[0].SubScenes[0].Location.StartY != 300 || in[0].SubScenes[0].Font.Size != 40 || in[0].Background.Src[0].Mode != "" {
		t.Fatalf("input mutated: %+v", in[0].SubScenes[0])
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	containers := []Size{{1920, 1080}, {960, 540}, {640, 360}, {1000, 700}}
	points := [][2]float64{{0, 0}, {960, 540}, {1920, 1080}, {123, 456}, {1899, 17}}
	for _, c := range containers {
		for _, p := range points {
			px := ToPixel(p[0], p[1], c)
			x, y, ok := ToLogical(px, c)
			if !ok {
				t.Fatalf("container %+v rejected", c)
			}
			if math.Abs(x-p[0]) > 1 || math.Abs(y-p[1]) > 1 {
				t.Fatalf("round trip %v in %+v gave (%v,%v)", p, c, x, y)
			}
		}
	}
}

func TestToLogicalClamps(t *testing.T) {
	x, y, ok := ToLogical(domain.Point{X: -50, Y: 900}, Size{Width: 800, Height: 450})
	if !ok || x != 0 || y != 1080 {
		t.Fatalf("got (%v,%v,%v)", x, y, ok)
	}
	if _, _, ok := ToLogical(domain.Point{}, Size{}); ok {
		t.Fatalf("empty container must be rejected")
	}
}
