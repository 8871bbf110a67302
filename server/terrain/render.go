// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"fmt"
	"github.com/SoftbearStudios/offroad/server/world"
	"image"
	"image/color"
)

type ColorVec [3]float32

var colors = [...]ColorVec{
	RGB(70, 60, 45),
	RGB(150, 130, 90),
	RGB(90, 150, 40),
	RGB(105, 110, 115),
	Gray(235),
}

var (
	roadColor       = RGB(60, 60, 62)
	roadCenterColor = RGB(200, 180, 60)
)

// Render draws a top down image of surface over bounds, width pixels wide.
// Terrain heights are shaded by band relative to maxHeight.
func Render(surface Surface, bounds world.AABB, width int, maxHeight float32) *image.RGBA {
	if width <= 0 || bounds.Width <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	step := bounds.Width / float32(width)
	height := int(bounds.Depth / step)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			x := bounds.X + (float32(i)+0.5)*step
			z := bounds.Z + (float32(j)+0.5)*step

			hit, ok := surface.Raycast(x, z)
			if !ok {
				img.Set(i, j, color.RGBA{A: 255})
				continue
			}

			var c ColorVec
			switch hit.Class {
			case SurfaceRoadCenter:
				c = roadCenterColor
			case SurfaceRoad:
				c = roadColor
			default:
				c = heightColor(hit.Height, maxHeight)
			}
			img.Set(i, j, c.Color())
		}
	}

	return img
}

func heightColor(h, maxHeight float32) ColorVec {
	if maxHeight <= 0 {
		return colors[0]
	}
	f := h / maxHeight
	switch {
	case f <= LowlandLevel:
		return colors[0].Lerp(colors[1], world.Clamp01(f/LowlandLevel))
	case f <= GrassLevel:
		return colors[1].Lerp(colors[2], world.Clamp01((f-LowlandLevel)/(GrassLevel-LowlandLevel)))
	case f <= RockLevel:
		return colors[2].Lerp(colors[3], world.Clamp01((f-GrassLevel)/(RockLevel-GrassLevel)))
	default:
		return colors[3].Lerp(colors[4], world.Clamp01((f-RockLevel)/(SnowLevel-RockLevel)))
	}
}

func Gray(v byte) ColorVec {
	return RGB(v, v, v)
}

func RGB(r, g, b byte) ColorVec {
	const factor = 1.0 / 255
	return ColorVec{float32(r) * factor, float32(g) * factor, float32(b) * factor}
}

func (vec ColorVec) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", floatToByte(vec[0]), floatToByte(vec[1]), floatToByte(vec[2]))
}

func (vec ColorVec) Lerp(other ColorVec, factor float32) ColorVec {
	for i := range vec {
		vec[i] = world.Lerp(vec[i], other[i], factor)
	}
	return vec
}

func (vec ColorVec) Color() color.RGBA {
	return color.RGBA{R: floatToByte(vec[0]), G: floatToByte(vec[1]), B: floatToByte(vec[2]), A: 255}
}

func floatToByte(f float32) byte {
	if f < 0 {
		return 0
	}
	if f > 1.0 {
		return 255
	}
	return byte(f * 255)
}
