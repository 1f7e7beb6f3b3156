package convert

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// parseColor reads #RGB, #RGBA, #RRGGBB, #RRGGBBAA or an SVG color name.
func parseColor(s string) (color.Color, error) {
	if strings.HasPrefix(s, "#") {
		return parseHexToColor(s)
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("invalid fill color %q: not a hex code or SVG color name", s)
}

func parseHexToColor(s string) (color.Color, error) {
	c := color.NRGBA{A: 0xFF}
	var format string
	fields := 3
	short := false
	switch len(s) {
	case 4:
		format, short = "#%1x%1x%1x", true
	case 5:
		format, fields, short = "#%1x%1x%1x%1x", 4, true
	case 7:
		format = "#%02x%02x%02x"
	case 9:
		format, fields = "#%02x%02x%02x%02x", 4
	default:
		return nil, fmt.Errorf("invalid fill color, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA")
	}

	args := []any{&c.R, &c.G, &c.B, &c.A}
	n, err := fmt.Sscanf(s, format, args[:fields]...)
	if err != nil {
		return nil, fmt.Errorf("could not read color: %w", err)
	} else if n < fields {
		return nil, fmt.Errorf("insufficient fill color fields: %d", n)
	}

	if short {
		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		if fields == 4 {
			c.A |= c.A << 4
		}
	}
	return c, nil
}
