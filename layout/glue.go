package layout

// Glue 是词间弹性间距的占位节点。伸缩语义尚未实现，段落排版时直接跳过。
type Glue struct{}

var _ Node = Glue{}

func (Glue) Kind() NodeKind { return KindGlue }
func (Glue) Layout(widthHint, heightHint float64) {}
func (Glue) Place(x, y float64) {}
func (Glue) Width() float64 { return 0 }
func (Glue) Ascent() float64 { return 0 }
func (Glue) Descent() float64 { return 0 }
func (Glue) VOff() float64 { return 0 }
func (Glue) Render(r Renderer, xref, yref float64) {}
