package layout

// ParBox 将一组盒子从左到右排列，宽度不足时换行。
// 参考点为最后一行基线的左端点：之前各行都折算进 ascent。
//
// ParBox 不是并发安全的，同一实例上的 Layout/Render 需要由调用方串行化。
type ParBox struct {
	nodes    []Node
	vspacing float64
	hspacing float64

	width   float64
	ascent  float64
	descent float64
	voff    float64
	lines   int
	// 多行段落整体上移的距离，使最后一行基线成为整个盒子的基线
	multilineShift float64
	// Place 传入的锚点
	x, y float64
}

var _ Node = (*ParBox)(nil)

// NewParBox 使用给定子节点与行距、词距创建段落。子节点切片会被复制，段落独占其内容。
func NewParBox(nodes []Node, vspacing, hspacing float64) *ParBox {
	owned := make([]Node, len(nodes))
	copy(owned, nodes)
	return &ParBox{
		nodes:    owned,
		vspacing: vspacing,
		hspacing: hspacing,
	}
}

func (p *ParBox) Kind() NodeKind { return KindBox }
func (p *ParBox) Width() float64 { return p.width }
func (p *ParBox) Ascent() float64 { return p.ascent }
func (p *ParBox) Descent() float64 { return p.descent }
func (p *ParBox) VOff() float64 { return p.voff }

// SetVOff 设置渲染时统一施加的纵向偏移。
func (p *ParBox) SetVOff(v float64) { p.voff = v }

// Lines 返回最近一次 Layout 产生的换行次数（单行段落为 0）。
func (p *ParBox) Lines() int { return p.lines }

// MultilineShift 返回 Lines()*vspacing。
func (p *ParBox) MultilineShift() float64 { return p.multilineShift }

// Anchor 返回 Place 记录的锚点。
func (p *ParBox) Anchor() (x, y float64) { return p.x, p.y }

// Position 与 Anchor 相同，满足 Positioned。
func (p *ParBox) Position() (x, y float64) { return p.x, p.y }

// Nodes 返回子节点的只读视图。
func (p *ParBox) Nodes() []Node { return p.nodes }

// Spacing 返回构造时给定的行距与词距。
func (p *ParBox) Spacing() (vspacing, hspacing float64) { return p.vspacing, p.hspacing }

// Layout 执行贪心换行：每个盒子都收到与段落相同的宽高提示，
// 放不下时另起一行。每次调用都会从头重算全部派生状态。
func (p *ParBox) Layout(widthHint, heightHint float64) {
	var xOff, yOff float64
	lines := 0
	ascent := 0.0
	descent := 0.0

	for _, node := range p.nodes {
		if node.Kind() != KindBox {
			// glue 暂未实现
			continue
		}
		node.Layout(widthHint, heightHint)
		if xOff+node.Width() > widthHint {
			xOff = 0
			yOff -= p.vspacing
			lines++
			// 新行重新统计 descent；ascent 只记录第一行
			descent = 0
		}
		node.Place(xOff, yOff)
		xOff += node.Width() + p.hspacing

		if node.Descent() > descent {
			descent = node.Descent()
		}
		if lines == 0 && node.Ascent() > ascent {
			ascent = node.Ascent()
		}
	}

	p.lines = lines
	p.multilineShift = float64(lines) * p.vspacing
	p.ascent = ascent + p.multilineShift
	p.descent = descent
	p.width = widthHint
}

// Place 记录段落锚点，不做任何校验。
func (p *ParBox) Place(x, y float64) {
	p.x = x
	p.y = y
}

// Render 把所有子节点绘制到同一个参考原点，各行的纵向位置已编码在子节点的放置坐标中。
func (p *ParBox) Render(r Renderer, xref, yref float64) {
	x := xref + p.x
	y := yref + p.voff + p.y + p.multilineShift
	for _, node := range p.nodes {
		node.Render(r, x, y)
	}
}
