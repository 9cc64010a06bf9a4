package layout

// 叶子盒子：文字（单词）、行内矩形与行内图片。它们的度量在 Layout 中确定，
// 段落只读取结果。

// TextMetrics 是排版后端测得的文本度量（mm）。
type TextMetrics struct {
	Width   float64 `json:"width"`
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// TextBox 表示一个不可拆分的词。度量在构造前由 Typesetter 测量好。
type TextBox struct {
	content string
	style   TextStyle
	metrics TextMetrics
	voff    float64
	x, y    float64
}

var (
	_ Node       = (*TextBox)(nil)
	_ Positioned = (*TextBox)(nil)
)

// NewTextBox 以预先测得的度量创建词盒子。
func NewTextBox(content string, style TextStyle, metrics TextMetrics) *TextBox {
	return &TextBox{content: content, style: style, metrics: metrics}
}

func (t *TextBox) Kind() NodeKind { return KindBox }

// Layout 对文字无事可做：宽度与上下伸部在测量时已经确定，与提示无关。
func (t *TextBox) Layout(widthHint, heightHint float64) {}

func (t *TextBox) Place(x, y float64) {
	t.x = x
	t.y = y
}

func (t *TextBox) Width() float64 { return t.metrics.Width }
func (t *TextBox) Ascent() float64 { return t.metrics.Ascent }
func (t *TextBox) Descent() float64 { return t.metrics.Descent }
func (t *TextBox) VOff() float64 { return t.voff }

// SetVOff 抬高（正值）或降低（负值）文字，相对基线。
func (t *TextBox) SetVOff(v float64) { t.voff = v }

func (t *TextBox) Position() (x, y float64) { return t.x, t.y }

// Content 返回词内容。
func (t *TextBox) Content() string { return t.content }

// Style 返回绘制样式。
func (t *TextBox) Style() TextStyle { return t.style }

func (t *TextBox) Render(r Renderer, xref, yref float64) {
	r.DrawText(t.content, xref+t.x, yref+t.y+t.voff, t.style)
}

// SizePolicy 决定行内矩形/图片的尺寸如何由提示推出。
type SizePolicy int

const (
	SizeFixed    SizePolicy = iota // Value 即为 mm
	SizeRelative                   // Value 为提示的比例，例如 0.5
	SizeExpand                     // 占满提示
)

// SizeSpec 组合尺寸策略与数值。
type SizeSpec struct {
	Policy SizePolicy `json:"policy"`
	Value  float64    `json:"value"`
}

// Fixed 返回固定尺寸。
func Fixed(mm float64) SizeSpec { return SizeSpec{Policy: SizeFixed, Value: mm} }

// Relative 返回按提示比例计算的尺寸。
func Relative(fraction float64) SizeSpec { return SizeSpec{Policy: SizeRelative, Value: fraction} }

// Resolve 根据提示计算最终尺寸。
func (s SizeSpec) Resolve(hint float64) float64 {
	switch s.Policy {
	case SizeRelative:
		return hint * s.Value
	case SizeExpand:
		return hint
	default:
		return s.Value
	}
}

// shapeBox 保存矩形与图片共享的布局状态。图形坐落在基线上，descent 恒为 0。
type shapeBox struct {
	widthSpec  SizeSpec
	heightSpec SizeSpec
	width      float64
	height     float64
	voff       float64
	x, y       float64
}

func (s *shapeBox) Kind() NodeKind { return KindBox }

func (s *shapeBox) Layout(widthHint, heightHint float64) {
	s.width = s.widthSpec.Resolve(widthHint)
	s.height = s.heightSpec.Resolve(heightHint)
}

func (s *shapeBox) Place(x, y float64) {
	s.x = x
	s.y = y
}

func (s *shapeBox) Width() float64 { return s.width }
func (s *shapeBox) Ascent() float64 { return s.height }
func (s *shapeBox) Descent() float64 { return 0 }
func (s *shapeBox) VOff() float64 { return s.voff }
func (s *shapeBox) SetVOff(v float64) { s.voff = v }

func (s *shapeBox) Position() (x, y float64) { return s.x, s.y }

// RectBox 是一个行内矩形。
type RectBox struct {
	shapeBox
	style RectStyle
}

var (
	_ Node       = (*RectBox)(nil)
	_ Positioned = (*RectBox)(nil)
)

// NewRectBox 创建行内矩形。
func NewRectBox(width, height SizeSpec, style RectStyle) *RectBox {
	return &RectBox{shapeBox: shapeBox{widthSpec: width, heightSpec: height}, style: style}
}

func (b *RectBox) Render(r Renderer, xref, yref float64) {
	r.DrawRect(xref+b.x, yref+b.y+b.voff, b.width, b.height, b.style)
}

// ImageBox 是一个行内图片，src 由渲染器解析。
type ImageBox struct {
	shapeBox
	src string
}

var (
	_ Node       = (*ImageBox)(nil)
	_ Positioned = (*ImageBox)(nil)
)

// NewImageBox 创建行内图片。
func NewImageBox(src string, width, height SizeSpec) *ImageBox {
	return &ImageBox{shapeBox: shapeBox{widthSpec: width, heightSpec: height}, src: src}
}

// Src 返回图片来源。
func (b *ImageBox) Src() string { return b.src }

func (b *ImageBox) Render(r Renderer, xref, yref float64) {
	r.DrawImage(b.src, xref+b.x, yref+b.y+b.voff, b.width, b.height)
}
