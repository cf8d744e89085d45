package mcslices

import (
	"image"
	"image/color"
)

// Background is the color of pixels no chunk painted.
var Background = color.RGBA{A: 0xff}

// Canvas is the raster for a single layer. Pixels can only be set between
// Open and Close; the background is opaque black so the encoded image is
// plain 24-bit RGB.
type Canvas struct {
	Layer int

	width, height int
	img           *image.RGBA
	open          bool
}

func NewCanvas(layer, width, height int) *Canvas {
	return &Canvas{
		Layer:  layer,
		width:  width,
		height: height,
	}
}

// Open allocates the pixel buffer.
func (c *Canvas) Open() {
	if c.img == nil {
		c.img = image.NewRGBA(image.Rect(0, 0, c.width, c.height))
		for i := 3; i < len(c.img.Pix); i += 4 {
			c.img.Pix[i] = Background.A
		}
	}
	c.open = true
}

// Set paints one pixel. Writes outside the canvas are dropped.
func (c *Canvas) Set(x, y int, clr color.RGBA) {
	if !c.open || x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	i := c.img.PixOffset(x, y)
	s := c.img.Pix[i : i+4 : i+4]
	s[0] = clr.R
	s[1] = clr.G
	s[2] = clr.B
	s[3] = 0xff
}

// Close finishes painting. The image stays readable.
func (c *Canvas) Close() {
	c.open = false
}

func (c *Canvas) IsOpen() bool {
	return c.open
}

func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// Image returns the finished raster, or nil if the canvas was never opened.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// At reads back a pixel; unopened canvases read as the background.
func (c *Canvas) At(x, y int) color.RGBA {
	if c.img == nil {
		return Background
	}
	return c.img.RGBAAt(x, y)
}
