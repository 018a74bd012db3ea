package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeSurface registra as chamadas recebidas sem rasterizar nada.
type fakeSurface struct {
	fills    int
	segments []([2]Point)
	encodes  int
}

func (f *fakeSurface) Fill()                      { f.fills++ }
func (f *fakeSurface) DrawSegment(from, to Point) { f.segments = append(f.segments, [2]Point{from, to}) }
func (f *fakeSurface) Bounds() (int, int)         { return 600, 200 }
func (f *fakeSurface) Encode() (string, error) {
	f.encodes++
	return "data:image/png;base64,ZmFrZQ==", nil
}

func newTestPad(surface Surface) (*Pad, *[]*string) {
	var calls []*string
	pad := NewPad(surface, func(encoded *string) {
		calls = append(calls, encoded)
	})
	return pad, &calls
}

func TestPad_FluxoCompleto(t *testing.T) {
	surface := &fakeSurface{}
	pad, calls := newTestPad(surface)

	t.Run("begin extend end confirm notifica imagem codificada", func(t *testing.T) {
		pad.BeginStroke(Point{X: 10, Y: 10})
		pad.ExtendStroke(Point{X: 20, Y: 15})
		pad.ExtendStroke(Point{X: 30, Y: 20})
		pad.EndStroke()

		assert.True(t, pad.HasContent())
		assert.NoError(t, pad.Confirm())

		assert.Len(t, *calls, 1)
		assert.NotNil(t, (*calls)[0])
		assert.True(t, strings.HasPrefix(*(*calls)[0], "data:image/png;base64,"))
		assert.Len(t, surface.segments, 2)
	})

	t.Run("confirm não limpa a superfície", func(t *testing.T) {
		assert.True(t, pad.HasContent())
	})

	t.Run("clear notifica nil e confirm posterior é inoperante", func(t *testing.T) {
		pad.Clear()

		assert.False(t, pad.HasContent())
		assert.Len(t, *calls, 2)
		assert.Nil(t, (*calls)[1])

		// confirm sem novos traços não dispara o callback de novo
		assert.NoError(t, pad.Confirm())
		assert.Len(t, *calls, 2)
	})
}

func TestPad_EndStrokeIdempotente(t *testing.T) {
	surface := &fakeSurface{}
	pad, _ := newTestPad(surface)

	pad.BeginStroke(Point{X: 1, Y: 1})
	pad.ExtendStroke(Point{X: 2, Y: 2})
	pad.EndStroke()
	segmentsAfterFirst := len(surface.segments)
	strokesAfterFirst := len(pad.Strokes())

	pad.EndStroke()

	assert.Equal(t, segmentsAfterFirst, len(surface.segments))
	assert.Equal(t, strokesAfterFirst, len(pad.Strokes()))
	assert.True(t, pad.HasContent())
}

func TestPad_EstadosInvalidos(t *testing.T) {
	t.Run("extend sem begin é inoperante", func(t *testing.T) {
		surface := &fakeSurface{}
		pad, _ := newTestPad(surface)

		pad.ExtendStroke(Point{X: 5, Y: 5})

		assert.Empty(t, surface.segments)
		assert.False(t, pad.HasContent())
	})

	t.Run("begin com traço aberto é ignorado", func(t *testing.T) {
		surface := &fakeSurface{}
		pad, _ := newTestPad(surface)

		pad.BeginStroke(Point{X: 1, Y: 1})
		pad.BeginStroke(Point{X: 50, Y: 50}) // ignorado
		pad.ExtendStroke(Point{X: 2, Y: 2})
		pad.EndStroke()

		strokes := pad.Strokes()
		assert.Len(t, strokes, 1)
		assert.Equal(t, Point{X: 1, Y: 1}, strokes[0][0])
	})

	t.Run("begin sem conteúdo não dispara callback", func(t *testing.T) {
		surface := &fakeSurface{}
		pad, calls := newTestPad(surface)

		pad.BeginStroke(Point{X: 1, Y: 1})
		pad.EndStroke()
		assert.NoError(t, pad.Confirm())

		assert.Empty(t, *calls)
	})
}

func TestPad_Desabilitado(t *testing.T) {
	surface := &fakeSurface{}
	pad, _ := newTestPad(surface)

	pad.BeginStroke(Point{X: 1, Y: 1})
	pad.ExtendStroke(Point{X: 2, Y: 2})
	pad.EndStroke()

	fillsBefore := surface.fills
	pad.SetEnabled(false)

	t.Run("begin e extend inoperantes quando desabilitado", func(t *testing.T) {
		pad.BeginStroke(Point{X: 10, Y: 10})
		pad.ExtendStroke(Point{X: 20, Y: 20})

		assert.Len(t, pad.Strokes(), 1)
	})

	t.Run("desabilitar não apaga conteúdo existente", func(t *testing.T) {
		assert.True(t, pad.HasContent())
		assert.Equal(t, fillsBefore, surface.fills)
	})

	t.Run("reabilitar volta a capturar", func(t *testing.T) {
		pad.SetEnabled(true)
		pad.BeginStroke(Point{X: 10, Y: 10})
		pad.ExtendStroke(Point{X: 20, Y: 20})
		pad.EndStroke()

		assert.Len(t, pad.Strokes(), 2)
	})
}

func TestPad_ReescalonamentoDeCoordenadas(t *testing.T) {
	surface := &fakeSurface{} // intrínseco 600x200
	pad, _ := newTestPad(surface)

	// Exibido com metade do tamanho intrínseco: entrada é dobrada.
	pad.SetDisplaySize(300, 100)

	pad.BeginStroke(Point{X: 30, Y: 10})
	pad.ExtendStroke(Point{X: 60, Y: 20})
	pad.EndStroke()

	strokes := pad.Strokes()
	assert.Equal(t, Point{X: 60, Y: 20}, strokes[0][0])
	assert.Equal(t, Point{X: 120, Y: 40}, strokes[0][1])
}

func TestImageSurface(t *testing.T) {
	t.Run("encode devolve data URL PNG", func(t *testing.T) {
		surface := NewImageSurface(100, 50)
		surface.DrawSegment(Point{X: 10, Y: 10}, Point{X: 40, Y: 30})

		encoded, err := surface.Encode()

		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(encoded, "data:image/png;base64,"))
	})

	t.Run("dimensões não positivas caem no padrão", func(t *testing.T) {
		surface := NewImageSurface(0, -1)
		w, h := surface.Bounds()

		assert.Equal(t, DefaultWidth, w)
		assert.Equal(t, DefaultHeight, h)
	})

	t.Run("fill restaura o fundo branco", func(t *testing.T) {
		surface := NewImageSurface(50, 50)
		surface.DrawSegment(Point{X: 0, Y: 0}, Point{X: 49, Y: 49})
		before, err := surface.Encode()
		assert.NoError(t, err)

		surface.Fill()
		after, err := surface.Encode()
		assert.NoError(t, err)

		blank, err := NewImageSurface(50, 50).Encode()
		assert.NoError(t, err)
		assert.NotEqual(t, before, after)
		assert.Equal(t, blank, after)
	})
}
