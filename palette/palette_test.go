package palette

import (
	"bytes"
	"image/color"
	"slices"
	"testing"
)

var (
	black = Color{0, 0, 0}
	white = Color{255, 255, 255}
	red   = Color{255, 0, 0}
	green = Color{0, 255, 0}
	blue  = Color{0, 0, 255}
)

func TestSnapChannel(t *testing.T) {
	for _, tc := range []struct {
		name string
		v    float64
		bits int
		want uint8
	}{
		{"zero", 0, 4, 0},
		{"max", 255, 4, 255},
		{"below half step", 8, 4, 0},
		{"above half step", 9, 4, 17},
		{"near level", 18, 4, 17},
		{"one bit low", 100, 1, 0},
		{"one bit high", 200, 1, 255},
		{"eight bits rounds", 127.6, 8, 128},
		{"negative clamps", -20, 8, 0},
		{"overflow clamps", 300, 8, 255},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := SnapChannel(tc.v, tc.bits); got != tc.want {
				t.Fatalf("SnapChannel(%g, %d): expected %d, actual %d", tc.v, tc.bits, tc.want, got)
			}
		})
	}
}

func TestSnapIsIdempotent(t *testing.T) {
	for bits := 1; bits <= 8; bits++ {
		for v := 0; v < 256; v++ {
			once := SnapChannel(float64(v), bits)
			if twice := SnapChannel(float64(once), bits); twice != once {
				t.Fatalf("bits %d, value %d: snapped to %d, then to %d", bits, v, once, twice)
			}
		}
	}
}

func TestFourBitGridMatchesNibbles(t *testing.T) {
	for v := 0; v < 256; v++ {
		s := SnapChannel(float64(v), 4)
		if s%17 != 0 {
			t.Fatalf("value %d snapped to %d, not a multiple of 17", v, s)
		}
	}
}

func TestGridQuantize(t *testing.T) {
	// given
	colors := []Color{{1, 2, 3}, {250, 250, 250}, {0, 0, 0}, {255, 255, 255}, {20, 0, 0}}

	// when
	got := GridQuantize(colors, 4)

	// then
	want := Palette{black, white, {17, 0, 0}}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, actual %v", want, got)
	}
}

func TestCountCells(t *testing.T) {
	s := Sample{{0, 0, 0}, {3, 3, 3}, {255, 255, 255}, {250, 250, 250}, {128, 0, 0}}
	if got := CountCells(s, 4); got != 3 {
		t.Fatalf("expected 3 cells, actual %d", got)
	}
	if got := CountCells(s, 8); got != 5 {
		t.Fatalf("expected 5 cells at 8 bits, actual %d", got)
	}
}

func TestHistogram(t *testing.T) {
	// given
	s := Sample{red, blue, red, green, red, blue}

	// when
	hist := Histogram(s)

	// then
	want := []Entry{{red, 3}, {blue, 2}, {green, 1}}
	if !slices.Equal(hist, want) {
		t.Fatalf("expected %v, actual %v", want, hist)
	}
}

func TestSortByLuminance(t *testing.T) {
	// given
	p := Palette{white, green, black, red}

	// when
	sorted := SortByLuminance(p)

	// then
	want := Palette{black, red, green, white}
	if !slices.Equal(sorted, want) {
		t.Fatalf("expected %v, actual %v", want, sorted)
	}
	if !slices.Equal(p, Palette{white, green, black, red}) {
		t.Fatalf("input was modified: %v", p)
	}
	if again := SortByLuminance(sorted); !slices.Equal(again, sorted) {
		t.Fatalf("sorting twice changed the order: %v", again)
	}
}

func TestIndex(t *testing.T) {
	p := Palette{black, white, red, {0, 0, 0}}

	for _, tc := range []struct {
		name string
		c    Color
		want int
	}{
		{"exact first", black, 0},
		{"exact later", red, 2},
		{"nearest", Color{200, 30, 20}, 2},
		{"tie goes to first", Color{1, 1, 1}, 0},
		{"mid gray", Color{127, 127, 127}, 0},
		{"light", Color{250, 240, 245}, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Index(tc.c); got != tc.want {
				t.Fatalf("Index(%v): expected %d, actual %d", tc.c, tc.want, got)
			}
		})
	}

	if got := (Palette{}).Index(red); got != 0 {
		t.Fatalf("empty palette: expected 0, actual %d", got)
	}
}

func TestColorModel(t *testing.T) {
	c := Model.Convert(color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	if c != (Color{10, 20, 30}) {
		t.Fatalf("unexpected conversion %v", c)
	}

	r, g, b, a := Color{255, 0, 128}.RGBA()
	if r != 0xFFFF || g != 0 || b != 0x8080 || a != 0xFFFF {
		t.Fatalf("unexpected RGBA %x %x %x %x", r, g, b, a)
	}

	if s := (Color{255, 0, 128}).String(); s != "#ff0080" {
		t.Fatalf("unexpected string %q", s)
	}
}

func TestRIFFRoundTrip(t *testing.T) {
	// given
	pals := []Palette{
		{black, white, red},
		{green, blue},
	}

	// when
	var buf bytes.Buffer
	if _, err := WriteRIFF(&buf, pals...); err != nil {
		t.Fatal(err)
	}
	got, err := ReadRIFF(&buf)
	if err != nil {
		t.Fatal(err)
	}

	// then
	if len(got) != len(pals) {
		t.Fatalf("expected %d palettes, actual %d", len(pals), len(got))
	}
	for i := range pals {
		if !slices.Equal(got[i], pals[i]) {
			t.Fatalf("palette %d: expected %v, actual %v", i, pals[i], got[i])
		}
	}
}

func TestReadRIFFRejectsOtherForms(t *testing.T) {
	data := []byte("RIFF\x04\x00\x00\x00WAVE")
	if _, err := ReadRIFF(bytes.NewReader(data)); err == nil {
		t.Fatal("expected an error for a non-palette RIFF form")
	}
}
