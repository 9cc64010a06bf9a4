package layout

import "errors"

var (
	// ErrNoTypesetter 表示 BuildOptions 缺少测量文字的后端。
	ErrNoTypesetter = errors.New("layout: 缺少排版后端 Typesetter")
	// ErrNoPage 表示文档中没有 page 段落。
	ErrNoPage = errors.New("layout: 文档中缺少 page 段落")
)

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与默认值。
type BuildOptions struct {
	Typesetter Typesetter
	Defaults   Defaults
	Debug      DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	Items bool // 在结果中记录每个子节点的放置坐标
}

// Defaults 是 DSL 未显式声明时使用的排版参数（mm）。
type Defaults struct {
	PageSize   string
	Margin     Margin
	FontSize   float64
	VSpacing   LineHeightSpec
	HSpacing   float64
	SpaceAfter float64
}

// DefaultDefaults 返回内置默认值：A4、20mm 边距、12pt 字号、1.2 倍行距。
func DefaultDefaults() Defaults {
	return Defaults{
		PageSize:   "A4",
		Margin:     Margin{Top: 20, Right: 20, Bottom: 20, Left: 20},
		FontSize:   12 * PtToMm,
		VSpacing:   LineHeightSpec{Kind: LineHeightFactor, Factor: 1.2},
		HSpacing:   1.5,
		SpaceAfter: 3,
	}
}

// withFallbacks 用内置默认值补齐零值字段。完全未设置时整体使用 DefaultDefaults；
// 边距、词距与段后距为 0 是合法取值，只有负数才回退。
func (d Defaults) withFallbacks() Defaults {
	base := DefaultDefaults()
	if d == (Defaults{}) {
		return base
	}
	if d.PageSize == "" {
		d.PageSize = base.PageSize
	}
	if d.Margin.Top < 0 || d.Margin.Right < 0 || d.Margin.Bottom < 0 || d.Margin.Left < 0 {
		d.Margin = base.Margin
	}
	if d.FontSize <= 0 {
		d.FontSize = base.FontSize
	}
	if d.VSpacing == (LineHeightSpec{}) {
		d.VSpacing = base.VSpacing
	}
	if d.HSpacing < 0 {
		d.HSpacing = base.HSpacing
	}
	if d.SpaceAfter < 0 {
		d.SpaceAfter = base.SpaceAfter
	}
	return d
}

// Typesetter 负责测量单个词在给定字体与字号（mm）下的宽度与上下伸部。
type Typesetter interface {
	MeasureText(content string, font FontResource, fontSize float64) (TextMetrics, error)
}
