package redact

import (
	"image/color"
	"strings"
)

// fillColors enumerates the supported fill color names.
var fillColors = map[string]color.RGBA{
	"black": {0, 0, 0, 255},
	"white": {255, 255, 255, 255},
	"red":   {255, 0, 0, 255},
	"blue":  {0, 0, 255, 255},
	"green": {0, 255, 0, 255},
	"gray":  {128, 128, 128, 255},
	"grey":  {128, 128, 128, 255},
}

// FillColor resolves a color name case-insensitively. Unknown names resolve
// to black, the safe choice for redaction fills.
func FillColor(name string) color.RGBA {
	if c, ok := fillColors[strings.ToLower(name)]; ok {
		return c
	}
	return fillColors["black"]
}

// FillColorNames returns the recognized color names, one per color.
func FillColorNames() []string {
	return []string{"black", "white", "red", "blue", "green", "gray"}
}
