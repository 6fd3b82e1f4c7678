// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses a display color. It accepts SVG 1.1 color names
// such as "red" or "steelblue" and hex triplets "#rgb" and "#rrggbb".
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return nil, fmt.Errorf("unknown color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("bad color %q: want #rgb or #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("bad color %q: %w", s, err)
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
}

// palette is used for sets without a configured color.
var palette = []color.RGBA{
	colornames.Steelblue,
	colornames.Darkorange,
	colornames.Seagreen,
	colornames.Firebrick,
	colornames.Mediumpurple,
	colornames.Sienna,
	colornames.Hotpink,
	colornames.Gray,
}

// setColor returns the color for the i'th set, whose configured color
// is name. Unparseable names fall back to the palette.
func setColor(i int, name string) color.Color {
	if name != "" {
		if c, err := ParseColor(name); err == nil {
			return c
		}
	}
	return palette[i%len(palette)]
}

// translucent returns c with its alpha scaled by a, for the outer
// min..max bars.
func translucent(c color.Color, a float64) color.Color {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	nc.A = uint8(float64(nc.A) * a)
	return nc
}
