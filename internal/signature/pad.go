package signature

// Point é uma coordenada no espaço intrínseco da superfície de desenho.
type Point struct {
	X float64
	Y float64
}

// Surface é o destino de rasterização do pad. A lógica de captura não conhece
// a implementação concreta, o que permite testar os traços sem renderização
// real.
type Surface interface {
	// Fill pinta toda a superfície com a cor de fundo.
	Fill()
	// DrawSegment desenha um segmento de reta entre dois pontos intrínsecos.
	DrawSegment(from, to Point)
	// Encode congela o conteúdo atual em uma imagem codificada (data URL).
	Encode() (string, error)
	// Bounds devolve as dimensões intrínsecas da superfície.
	Bounds() (width, height int)
}

// ChangeFunc recebe a imagem codificada após Confirm, ou nil após Clear
// (nenhuma assinatura capturada no momento).
type ChangeFunc func(encoded *string)

// Pad captura traços de assinatura à mão livre.
//
// As coordenadas de entrada chegam em pixels de tela e são reescaladas pela
// razão tamanho-intrínseco/tamanho-exibido antes de serem registradas, de modo
// que os traços independem da resolução. Todo o estado é local e de escritor
// único (callbacks de evento de UI); nenhuma operação bloqueia.
type Pad struct {
	surface  Surface
	onChange ChangeFunc

	displayW float64
	displayH float64

	disabled   bool
	strokeOpen bool
	hasContent bool
	last       Point

	// Lista apenas-anexável de traços; cada traço é uma sequência de pontos.
	strokes [][]Point
}

// NewPad cria um pad de captura sobre a superfície dada. O pad nasce limpo,
// habilitado e com o tamanho exibido igual ao intrínseco.
func NewPad(surface Surface, onChange ChangeFunc) *Pad {
	w, h := surface.Bounds()
	pad := &Pad{
		surface:  surface,
		onChange: onChange,
		displayW: float64(w),
		displayH: float64(h),
	}
	surface.Fill()
	return pad
}

// SetDisplaySize informa o tamanho em pixels de tela com que a superfície está
// sendo exibida, para o reescalonamento das coordenadas de entrada.
func (p *Pad) SetDisplaySize(width, height float64) {
	if width > 0 {
		p.displayW = width
	}
	if height > 0 {
		p.displayH = height
	}
}

// SetEnabled habilita ou desabilita a captura. Desabilitar não apaga o
// conteúdo existente; apenas torna BeginStroke/ExtendStroke inoperantes.
func (p *Pad) SetEnabled(enabled bool) {
	p.disabled = !enabled
}

// HasContent indica se a superfície contém algum traço.
func (p *Pad) HasContent() bool {
	return p.hasContent
}

// Strokes devolve uma cópia dos traços registrados.
func (p *Pad) Strokes() [][]Point {
	out := make([][]Point, len(p.strokes))
	for i, s := range p.strokes {
		out[i] = append([]Point(nil), s...)
	}
	return out
}

// BeginStroke abre um novo traço em point (coordenadas de tela). Ignorado se
// a captura está desabilitada ou se já existe um traço aberto.
func (p *Pad) BeginStroke(point Point) {
	if p.disabled || p.strokeOpen {
		return
	}
	scaled := p.scale(point)
	p.strokeOpen = true
	p.last = scaled
	p.strokes = append(p.strokes, []Point{scaled})
}

// ExtendStroke acrescenta um segmento de reta do último ponto registrado até
// point. Inoperante sem traço aberto.
func (p *Pad) ExtendStroke(point Point) {
	if p.disabled || !p.strokeOpen {
		return
	}
	scaled := p.scale(point)
	p.surface.DrawSegment(p.last, scaled)
	idx := len(p.strokes) - 1
	p.strokes[idx] = append(p.strokes[idx], scaled)
	p.last = scaled
	p.hasContent = true
}

// EndStroke fecha o traço aberto, se houver. Idempotente.
func (p *Pad) EndStroke() {
	p.strokeOpen = false
}

// Clear restaura o fundo em branco, descarta os traços e notifica o callback
// com nil (nenhuma assinatura capturada).
func (p *Pad) Clear() {
	p.surface.Fill()
	p.strokes = nil
	p.strokeOpen = false
	p.hasContent = false
	if p.onChange != nil {
		p.onChange(nil)
	}
}

// Confirm codifica a superfície atual e notifica o callback com o resultado.
// Inoperante sem conteúdo. Não limpa a superfície.
func (p *Pad) Confirm() error {
	if !p.hasContent {
		return nil
	}
	encoded, err := p.surface.Encode()
	if err != nil {
		return err
	}
	if p.onChange != nil {
		p.onChange(&encoded)
	}
	return nil
}

// scale converte coordenadas de tela para o espaço intrínseco.
func (p *Pad) scale(point Point) Point {
	w, h := p.surface.Bounds()
	return Point{
		X: point.X * float64(w) / p.displayW,
		Y: point.Y * float64(h) / p.displayH,
	}
}
