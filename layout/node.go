package layout

// 该文件定义段落排版使用的节点协议：所有子节点（文字、形状、图片、段落本身）都实现 Node。
// 长度统一为毫米（mm），纵向坐标向上为正，y=0 对应基线。

// NodeKind 区分盒子与胶水两类节点。
type NodeKind int

const (
	KindBox  NodeKind = iota // 具有宽度与上下伸部的可渲染盒子
	KindGlue                 // 预留的弹性间距节点，目前不参与排版
)

func (k NodeKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindGlue:
		return "glue"
	default:
		return "unknown"
	}
}

// Node 是段落中每个子节点的能力集合。
// Width/Ascent/Descent 仅在本轮 Layout 之后有效；Render 之前必须先 Layout 与 Place。
type Node interface {
	Kind() NodeKind
	// Layout 根据宽高提示计算自身度量。
	Layout(widthHint, heightHint float64)
	// Place 记录节点相对父容器原点的位置（基线左端）。
	Place(x, y float64)
	Width() float64
	Ascent() float64
	Descent() float64
	VOff() float64
	// Render 以 (xref, yref) 为父容器原点绘制自身。
	Render(r Renderer, xref, yref float64)
}

// Renderer 是叶子盒子使用的绘图能力，段落只负责透传。
// (x, y) 为页面坐标（mm，y 轴向上）；DrawText 的 y 为基线。
type Renderer interface {
	DrawText(content string, x, y float64, style TextStyle)
	DrawRect(x, y, width, height float64, style RectStyle)
	DrawImage(src string, x, y, width, height float64)
}

// TextStyle 描述一个词的绘制样式，字号单位为 mm。
type TextStyle struct {
	Font  FontResource `json:"font"`
	Size  float64      `json:"size"`
	Color Color        `json:"color"`
}

// RectStyle 描述行内矩形的填充与描边，Fill 为空表示不填充。
type RectStyle struct {
	Fill        *Color  `json:"fill,omitempty"`
	Stroke      *Color  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Positioned 由能报告已放置坐标的节点实现，用于调试输出。
type Positioned interface {
	Position() (x, y float64)
}
