package raster

import (
	"errors"
	"image"
	"image/color"
	"slices"
	"sync"
	"testing"

	"picpal/palette"
)

func gradient(width, height int) *Raster {
	r := New(width, height)
	for y := range height {
		for x := range width {
			r.Set(x, y, palette.Color{R: uint8(x * 16), G: uint8(y * 16), B: uint8((x + y) * 8)})
		}
	}
	return r
}

type recorder struct {
	mu     sync.Mutex
	values []float64
}

func (r *recorder) progress(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func TestSample(t *testing.T) {
	// given
	r := gradient(3, 4)
	var rec recorder

	// when
	s := Sample(r, rec.progress)

	// then
	if len(s) != 12 {
		t.Fatalf("expected 12 colors, actual %d", len(s))
	}
	for y := range 4 {
		for x := range 3 {
			if s[y*3+x] != r.RGBAt(x, y) {
				t.Fatalf("color %d is not pixel (%d, %d)", y*3+x, x, y)
			}
		}
	}
	want := []float64{.25, .5, .75, 1}
	if !slices.Equal(rec.values, want) {
		t.Fatalf("expected progress %v, actual %v", want, rec.values)
	}
}

func TestSampleEmpty(t *testing.T) {
	if s := Sample(New(0, 5), nil); len(s) != 0 {
		t.Fatalf("expected empty sample, actual %d colors", len(s))
	}
	if s := Sample(nil, nil); len(s) != 0 {
		t.Fatalf("expected empty sample, actual %d colors", len(s))
	}
}

func TestIndex(t *testing.T) {
	// given
	r := gradient(16, 9)
	pal := palette.Palette{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}, {R: 255, G: 0, B: 0}, {R: 0, G: 128, B: 0}}
	var rec recorder

	// when
	idx, err := Index(r, pal, rec.progress)

	// then
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.Pix) != 16*9 || idx.Width != 16 || idx.Height != 9 {
		t.Fatalf("unexpected geometry %dx%d with %d pixels", idx.Width, idx.Height, len(idx.Pix))
	}
	for i, v := range idx.Pix {
		if want := pal.Index(r.Pix[i]); int(v) != want {
			t.Fatalf("pixel %d: expected index %d, actual %d", i, want, v)
		}
	}
	if len(rec.values) != 9 {
		t.Fatalf("expected one report per row, actual %d", len(rec.values))
	}
	if !slices.IsSorted(rec.values) || rec.values[len(rec.values)-1] != 1 {
		t.Fatalf("progress should grow to 1: %v", rec.values)
	}
}

func TestIndexRejectsPalettes(t *testing.T) {
	r := gradient(2, 2)
	for _, pal := range []palette.Palette{nil, make(palette.Palette, 257)} {
		if _, err := Index(r, pal, nil); !errors.Is(err, ErrInvalidPalette) {
			t.Fatalf("%d colors: expected ErrInvalidPalette, actual %v", len(pal), err)
		}
	}
}

func TestIndexEmpty(t *testing.T) {
	idx, err := Index(New(0, 0), palette.Palette{{R: 1, G: 2, B: 3}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.Pix) != 0 {
		t.Fatalf("expected no pixels, actual %d", len(idx.Pix))
	}
}

func TestFromImage(t *testing.T) {
	// given
	src := image.NewNRGBA(image.Rect(10, 20, 12, 21))
	src.Set(10, 20, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	src.Set(11, 20, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	// when
	r := FromImage(src)

	// then
	if r.Width != 2 || r.Height != 1 {
		t.Fatalf("unexpected size %dx%d", r.Width, r.Height)
	}
	want := []palette.Color{{R: 1, G: 2, B: 3}, {R: 200, G: 100, B: 50}}
	if !slices.Equal(r.Pix, want) {
		t.Fatalf("expected %v, actual %v", want, r.Pix)
	}
}

func TestPaletted(t *testing.T) {
	pal := palette.Palette{{R: 0, G: 0, B: 0}, {R: 255, G: 0, B: 0}}
	m := NewIndexed(2, 2, pal)
	m.SetColorIndex(1, 0, 1)
	m.SetColorIndex(0, 1, 1)

	p := m.Paletted()
	for y := range 2 {
		for x := range 2 {
			if p.ColorIndexAt(x, y) != m.ColorIndexAt(x, y) {
				t.Fatalf("pixel (%d, %d) differs", x, y)
			}
		}
	}
	if got := palette.FromColor(m.At(1, 0)); got != pal[1] {
		t.Fatalf("unexpected color %v", got)
	}
}

func TestProgressWindow(t *testing.T) {
	var rec recorder
	p := Progress(rec.progress).Window(.2, .4)
	p(0)
	p(.5)
	p(1)

	want := []float64{.2, .3, .4}
	for i, v := range rec.values {
		if d := v - want[i]; d > 1e-9 || d < -1e-9 {
			t.Fatalf("expected %v, actual %v", want, rec.values)
		}
	}

	if Progress(nil).Window(0, 1) != nil {
		t.Fatal("window of a nil progress should be nil")
	}
}

func TestRemap(t *testing.T) {
	if got := Remap(5, 0, 10, 100, 200); got != 150 {
		t.Fatalf("expected 150, actual %v", got)
	}
	if got := Remap(.5, 0, 1, .6, .9); got < .749 || got > .751 {
		t.Fatalf("expected .75, actual %v", got)
	}
}

func BenchmarkIndex(b *testing.B) {
	r := gradient(640, 480)
	pal := make(palette.Palette, 16)
	for i := range pal {
		pal[i] = palette.Color{R: uint8(i * 17), G: uint8(255 - i*17), B: uint8(i * 8)}
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := Index(r, pal, nil); err != nil {
			b.Fatal(err)
		}
	}
}
