package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"picpal/palette"
	"picpal/parallel"
	"picpal/quantize"
	"picpal/safb"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.NRGBA{
				R: uint8(x * 255 / max(width-1, 1)),
				G: uint8(y * 255 / max(height-1, 1)),
				B: uint8((x + y) * 16),
				A: 0xFF,
			})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func newCmd(scan string) *CLICmd {
	return &CLICmd{
		Scan:     scan,
		Dest:     "raw",
		Colors:   8,
		Method:   quantize.KMeans,
		Bits:     4,
		Strength: 1,
		Upscale:  1,
	}
}

func TestConvert(t *testing.T) {
	// given
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "gradient.png"), 16, 12)

	c := newCmd(dir)
	c.Amplitude = .25
	c.Pal = true
	c.Preview = true
	c.Upscale = 2
	if err := c.Validate(nil); err != nil {
		t.Fatal(err)
	}

	// when
	pool := parallel.Start(1)
	err := c.Run(pool.Do, pool.Wait)

	// then
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "raw", "gradient.safb"))
	if err != nil {
		t.Fatal(err)
	}
	img, err := safb.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 16 || img.Height != 12 || len(img.Palette) != 8 {
		t.Fatalf("unexpected bitmap %dx%d with %d colors", img.Width, img.Height, len(img.Palette))
	}
	for i := 1; i < len(img.Palette); i++ {
		if img.Palette[i].Luminance() < img.Palette[i-1].Luminance() {
			t.Fatalf("palette is not sorted by luminance: %v", img.Palette)
		}
	}

	palFile, err := os.Open(filepath.Join(dir, "raw", "gradient.pal"))
	if err != nil {
		t.Fatal(err)
	}
	defer palFile.Close()
	pals, err := palette.ReadRIFF(palFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(pals) != 1 || len(pals[0]) != 8 {
		t.Fatalf("unexpected palette file contents %v", pals)
	}

	previewFile, err := os.Open(filepath.Join(dir, "raw", "gradient.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer previewFile.Close()
	cfg, err := png.DecodeConfig(previewFile)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 32 || cfg.Height != 24 {
		t.Fatalf("expected a 32x24 preview, actual %dx%d", cfg.Width, cfg.Height)
	}
}

func TestConvertOutputs(t *testing.T) {
	for _, tc := range []struct {
		name   string
		setup  func(c *CLICmd)
		file   string
		decode func(data []byte) error
	}{
		{
			name:  "compressed",
			setup: func(c *CLICmd) { c.Compress = true; c.Method = quantize.MedianCut },
			file:  "gradient.safb.zst",
			decode: func(data []byte) error {
				_, err := safb.Load(data)
				return err
			},
		},
		{
			name:  "legacy",
			setup: func(c *CLICmd) { c.Legacy = true; c.Method = quantize.Octree },
			file:  "gradient.raw",
			decode: func(data []byte) error {
				_, err := safb.DecodeLegacy(bytes.NewReader(data), 16, 12)
				return err
			},
		},
		{
			name:  "diffusion",
			setup: func(c *CLICmd) { c.Diffusion = "Floyd-Steinberg"; c.Method = quantize.HybridKMeansMMCQ },
			file:  "gradient.safb",
			decode: func(data []byte) error {
				_, err := safb.Unmarshal(data)
				return err
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// given
			dir := t.TempDir()
			writePNG(t, filepath.Join(dir, "gradient.png"), 16, 12)
			c := newCmd(dir)
			tc.setup(c)
			if err := c.Validate(nil); err != nil {
				t.Fatal(err)
			}

			// when
			pool := parallel.Start(2)
			if err := c.Run(pool.Do, pool.Wait); err != nil {
				t.Fatal(err)
			}

			// then
			data, err := os.ReadFile(filepath.Join(dir, "raw", tc.file))
			if err != nil {
				t.Fatal(err)
			}
			if err := tc.decode(data); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestConvertSkipsBrokenFiles(t *testing.T) {
	// given
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "good.png"), 8, 8)
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a picture"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := newCmd(dir)
	if err := c.Validate(nil); err != nil {
		t.Fatal(err)
	}

	// when
	pool := parallel.Start(1)
	err := c.Run(pool.Do, pool.Wait)

	// then
	if err == nil {
		t.Fatal("expected the broken file to be reported")
	}
	if _, err := os.Stat(filepath.Join(dir, "raw", "good.safb")); err != nil {
		t.Fatalf("good file was not converted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "raw", "broken.safb")); err == nil {
		t.Fatal("broken file produced output")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		name  string
		setup func(c *CLICmd)
	}{
		{"too many colors", func(c *CLICmd) { c.Colors = 17 }},
		{"no colors", func(c *CLICmd) { c.Colors = 0 }},
		{"bits", func(c *CLICmd) { c.Bits = 9 }},
		{"amplitude", func(c *CLICmd) { c.Amplitude = 2 }},
		{"matrix", func(c *CLICmd) { c.Diffusion = "zigzag" }},
		{"legacy and compress", func(c *CLICmd) { c.Legacy, c.Compress = true, true }},
		{"resize without size", func(c *CLICmd) { c.Resize = true }},
		{"fill", func(c *CLICmd) { c.Fill = "#12" }},
		{"scan", func(c *CLICmd) { c.Scan = filepath.Join(dir, "missing") }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newCmd(dir)
			tc.setup(c)
			if err := c.Validate(nil); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestFit(t *testing.T) {
	src := image.Rect(0, 0, 200, 100)
	for _, tc := range []struct {
		name         string
		crop, fill   bool
		canvas, dest image.Rectangle
		srcRect      image.Rectangle
	}{
		{"shrink", false, false, image.Rect(0, 0, 100, 50), image.Rect(0, 0, 100, 50), src},
		{"letterbox", false, true, image.Rect(0, 0, 100, 100), image.Rect(0, 25, 100, 75), src},
		{"crop", true, false, image.Rect(0, 0, 100, 100), image.Rect(0, 0, 100, 100), image.Rect(50, 0, 150, 100)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := fit(src, 100, 100, tc.crop, tc.fill)
			if l.canvas != tc.canvas || l.dest != tc.dest || l.src != tc.srcRect {
				t.Fatalf("unexpected layout %+v", l)
			}
			if l.fill != (tc.fill && !tc.crop) {
				t.Fatalf("unexpected fill flag %v", l.fill)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]palette.Color{
		"#f00":      {R: 255},
		"#336699":   {R: 0x33, G: 0x66, B: 0x99},
		"#11223344": {R: 0x11, G: 0x22, B: 0x33},
		"#abcf":     {R: 0xAA, G: 0xBB, B: 0xCC},
		"SteelBlue": {R: 0x46, G: 0x82, B: 0xB4},
	} {
		c, err := parseColor(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got := palette.FromColor(c); got != want {
			t.Fatalf("%q: expected %v, actual %v", in, want, got)
		}
	}

	for _, in := range []string{"#12", "#ggg", "not a color"} {
		if _, err := parseColor(in); err == nil {
			t.Fatalf("%q: expected an error", in)
		}
	}
}
