package signature

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
)

// Dimensões intrínsecas padrão da superfície de assinatura.
const (
	DefaultWidth  = 600
	DefaultHeight = 200

	// Espessura do traço em pixels intrínsecos.
	strokeRadius = 1.5
)

// ImageSurface rasteriza traços em um buffer RGBA e codifica o resultado em
// um data URL PNG. É a implementação de produção de Surface; os testes da
// lógica de captura podem usar superfícies falsas.
type ImageSurface struct {
	img    *image.RGBA
	width  int
	height int
}

// NewImageSurface cria uma superfície rasterizada com as dimensões dadas.
// Dimensões não positivas caem nos valores padrão.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	s := &ImageSurface{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}
	s.Fill()
	return s
}

// Bounds devolve as dimensões intrínsecas.
func (s *ImageSurface) Bounds() (int, int) {
	return s.width, s.height
}

// Fill pinta a superfície inteira de branco.
func (s *ImageSurface) Fill() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
}

// DrawSegment desenha um segmento de reta preto entre dois pontos.
func (s *ImageSurface) DrawSegment(from, to Point) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	dist := math.Hypot(dx, dy)
	steps := int(dist) + 1

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s.stamp(from.X+dx*t, from.Y+dy*t)
	}
}

// Encode congela o buffer atual em um data URL PNG base64.
func (s *ImageSurface) Encode() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// stamp pinta um disco de raio strokeRadius centrado em (cx, cy).
func (s *ImageSurface) stamp(cx, cy float64) {
	r := strokeRadius
	minX := int(math.Floor(cx - r))
	maxX := int(math.Ceil(cx + r))
	minY := int(math.Floor(cy - r))
	maxY := int(math.Ceil(cy + r))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if x < 0 || y < 0 || x >= s.width || y >= s.height {
				continue
			}
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				s.img.Set(x, y, color.Black)
			}
		}
	}
}
