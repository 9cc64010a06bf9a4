package layout

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色、图片与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource  `json:"fonts"`
	Colors map[string]Color         `json:"colors"`
	Images map[string]ImageResource `json:"images"`
	Styles map[string]Style         `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径、embed:<name> 或 built-in:<name>。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style"`
	Family   string `json:"family"` // 渲染器使用的 Family 名称
	Fallback string `json:"fallback,omitempty"`
}

// ImageResource 记录图片资源，宽高以毫米为单位。
type ImageResource struct {
	Name   string  `json:"name"`
	Src    string  `json:"src"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page 记录页面尺寸、边距与按顺序排好的段落。坐标原点在页面左下角，y 轴向上。
type Page struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Margin     Margin      `json:"margin"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Paragraph 是一个已排版、已放置的段落。X/Y 为最后一行基线左端的页面坐标。
type Paragraph struct {
	X              float64      `json:"x"`
	Y              float64      `json:"y"`
	Width          float64      `json:"width"`
	Ascent         float64      `json:"ascent"`
	Descent        float64      `json:"descent"`
	Lines          int          `json:"lines"`
	MultilineShift float64      `json:"multilineShift"`
	Items          []PlacedItem `json:"items,omitempty"`

	Box *ParBox `json:"-"`
}

// Height 返回段落占用的总高度。
func (p Paragraph) Height() float64 { return p.Ascent + p.Descent }

// Top 返回段落顶边的页面 y 坐标。
func (p Paragraph) Top() float64 { return p.Y + p.Ascent }

// PlacedItem 是段落内一个子节点的放置快照，坐标相对段落局部原点（第一行基线左端）。
type PlacedItem struct {
	Kind    string  `json:"kind"`
	Content string  `json:"content,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存输出文件的元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
