package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/parbox/binding"
	"github.com/ByLCY/parbox/dsl"
)

const defaultFontName = "Body"

var defaultTextColor = Color{R: 30, G: 30, B: 30}

// Build 根据 DSL AST 生成分页后的段落布局结果。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, errors.New("layout: 文档为空")
	}
	if opts.Typesetter == nil {
		return nil, ErrNoTypesetter
	}
	defaults := opts.Defaults.withFallbacks()

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	meta := collectMeta(doc)

	var pages []Page
	for _, section := range doc.Sections {
		if section.Page == nil {
			continue
		}
		sectionPages, err := buildPages(section.Page, res, data, opts, defaults)
		if err != nil {
			return nil, err
		}
		pages = append(pages, sectionPages...)
	}
	if len(pages) == 0 {
		return nil, ErrNoPage
	}

	return &Result{
		Pages:     pages,
		Resources: res,
		Meta:      meta,
	}, nil
}

func buildPages(section *dsl.PageSection, res ResourceSet, data any, opts BuildOptions, defaults Defaults) ([]Page, error) {
	if section.Body == nil {
		return nil, fmt.Errorf("%s: page 段落缺少内容", section.Pos)
	}
	width, height, err := resolvePageSize(section.Spec, defaults.PageSize)
	if err != nil {
		return nil, err
	}
	margin := resolveMargin(section.Spec.Params, defaults.Margin)
	if width-margin.Left-margin.Right <= 0 || height-margin.Top-margin.Bottom <= 0 {
		return nil, fmt.Errorf("%s: 页边距超出页面尺寸", section.Pos)
	}

	ctx := &flowContext{
		collector:  newPageCollector(width, height, margin),
		res:        res,
		data:       data,
		typesetter: opts.Typesetter,
		debug:      opts.Debug,
		defaults:   defaults,
	}
	for _, item := range section.Body.Items {
		switch {
		case item.Par != nil:
			if err := ctx.handlePar(item.Par); err != nil {
				return nil, err
			}
		case item.PageBreak != nil:
			ctx.collector.newPage()
		default:
			// 段落之外的行内内容按默认样式单独成段
			par := &dsl.Par{Pos: item.Pos(), Body: &dsl.FlowBlock{Items: []*dsl.FlowItem{item}}}
			if err := ctx.handlePar(par); err != nil {
				return nil, err
			}
		}
	}
	return ctx.collector.pages(), nil
}

// flowContext 保存页面级排版状态：当前页、资源、数据与默认值。
type flowContext struct {
	collector  *pageCollector
	res        ResourceSet
	data       any
	typesetter Typesetter
	debug      DebugOptions
	defaults   Defaults
}

// handlePar 把一个 par 命令转换成 ParBox，完成排版并按当前游标放到页面上。
func (ctx *flowContext) handlePar(par *dsl.Par) error {
	box, attrs, err := ctx.buildParBox(par, nil)
	if err != nil {
		return err
	}
	pc := ctx.collector
	contentWidth := pc.contentWidth()
	width := box.Width()

	// 段落自身从不根据高度换行；分页由这里决定。
	height := box.Ascent() + box.Descent()
	pc.ensureSpace(height)

	x := pc.margin.Left + alignOffset(contentWidth, width, attrs["align"])
	top := pc.height - pc.cursorY
	box.Place(x, top-box.Ascent())

	para := Paragraph{
		X:              x,
		Y:              top - box.Ascent(),
		Width:          width,
		Ascent:         box.Ascent(),
		Descent:        box.Descent(),
		Lines:          box.Lines(),
		MultilineShift: box.MultilineShift(),
		Box:            box,
	}
	if ctx.debug.Items {
		para.Items = snapshotItems(box)
	}
	pc.curr().appendParagraph(para)

	spaceAfter := ctx.defaults.SpaceAfter
	if v := attrs["space-after"]; v != "" {
		if spaceAfter, err = ParseDimension(v, contentWidth); err != nil {
			return fmt.Errorf("%s: par space-after: %w", par.Pos, err)
		}
	}
	pc.cursorY += height + spaceAfter
	return nil
}

// buildParBox 解析 par 的参数与子节点并执行一次排版。inherited 为外层段落传下来的文本属性。
func (ctx *flowContext) buildParBox(par *dsl.Par, inherited map[string]string) (*ParBox, map[string]string, error) {
	if par.Body == nil {
		return nil, nil, fmt.Errorf("%s: par 语句缺少内容", par.Pos)
	}
	styleName, attrs := parseArgs(par.Args, true)
	attrs = mergeStyleAttributes(styleName, attrs, ctx.res.Styles)
	textAttrs := inheritTextAttrs(inherited, attrs)

	contentWidth := ctx.collector.contentWidth()
	width := contentWidth
	if v := attrs["width"]; v != "" {
		w, err := ParseDimension(v, contentWidth)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: par width: %w", par.Pos, err)
		}
		width = w
	}
	hspacing := ctx.defaults.HSpacing
	if v := attrs["hspacing"]; v != "" {
		h, err := ParseDimension(v, width)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: par hspacing: %w", par.Pos, err)
		}
		hspacing = h
	}
	vspec := ctx.defaults.VSpacing
	if v := attrs["vspacing"]; v != "" {
		spec, err := ParseLineHeight(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: par vspacing: %w", par.Pos, err)
		}
		vspec = spec
	}

	nodes, maxFontSize, err := ctx.buildNodes(par.Body, textAttrs)
	if err != nil {
		return nil, nil, err
	}
	if maxFontSize <= 0 {
		maxFontSize = ctx.fontSize(textAttrs)
	}

	box := NewParBox(nodes, vspec.Resolve(maxFontSize), hspacing)
	if v := attrs["voff"]; v != "" {
		off, err := ParseDimension(v, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: par voff: %w", par.Pos, err)
		}
		box.SetVOff(off)
	}
	box.Layout(width, ctx.collector.contentHeight())
	return box, attrs, nil
}

// buildNodes 将 par 块内的条目转换为节点，并返回出现过的最大字号。
func (ctx *flowContext) buildNodes(body *dsl.FlowBlock, textAttrs map[string]string) ([]Node, float64, error) {
	var nodes []Node
	maxFontSize := 0.0
	for _, item := range body.Items {
		switch {
		case item.Literal != nil:
			words, size, err := ctx.buildWords(string(item.Literal.Value), textAttrs, "")
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, words...)
			maxFontSize = max(maxFontSize, size)
		case item.Text != nil:
			styleName, attrs := parseArgs(item.Text.Args, true)
			attrs = inheritTextAttrs(textAttrs, mergeStyleAttributes(styleName, attrs, ctx.res.Styles))
			words, size, err := ctx.buildWords(item.Text.Content(), attrs, attrs["voff"])
			if err != nil {
				return nil, 0, fmt.Errorf("%s: %w", item.Text.Pos, err)
			}
			nodes = append(nodes, words...)
			maxFontSize = max(maxFontSize, size)
		case item.Glue != nil:
			nodes = append(nodes, Glue{})
		case item.Rect != nil:
			rect, err := ctx.buildRect(item.Rect)
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, rect)
		case item.Image != nil:
			img, err := ctx.buildImage(item.Image)
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, img)
		case item.Par != nil:
			inner, _, err := ctx.buildParBox(item.Par, textAttrs)
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, inner)
		case item.PageBreak != nil:
			return nil, 0, fmt.Errorf("%s: pagebreak 只能直接出现在 page 中", item.PageBreak.Pos)
		}
	}
	return nodes, maxFontSize, nil
}

// buildWords 对文本做数据绑定与 NFC 规范化，按空白拆成词并逐个测量。
func (ctx *flowContext) buildWords(content string, attrs map[string]string, voff string) ([]Node, float64, error) {
	content = norm.NFC.String(binding.Interpolate(content, ctx.data))
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil, 0, nil
	}
	font, err := resolveFontResource(attrs["font"], ctx.res)
	if err != nil {
		return nil, 0, err
	}
	size := ctx.fontSize(attrs)
	style := TextStyle{Font: font, Size: size, Color: resolveColor(attrs["color"], ctx.res)}
	offset := 0.0
	if voff != "" {
		if offset, err = ParseDimension(voff, size); err != nil {
			return nil, 0, fmt.Errorf("text voff: %w", err)
		}
	}

	nodes := make([]Node, 0, len(words))
	for _, word := range words {
		m, err := ctx.typesetter.MeasureText(word, font, size)
		if err != nil {
			return nil, 0, fmt.Errorf("测量文本 %q 失败: %w", word, err)
		}
		tb := NewTextBox(word, style, m)
		tb.SetVOff(offset)
		nodes = append(nodes, tb)
	}
	return nodes, size, nil
}

func (ctx *flowContext) buildRect(rect *dsl.Rect) (*RectBox, error) {
	_, attrs := parseArgs(rect.Args, false)
	w, err := parseSizeSpec(attrs["width"])
	if err != nil {
		return nil, fmt.Errorf("%s: rect width: %w", rect.Pos, err)
	}
	h, err := parseSizeSpec(attrs["height"])
	if err != nil {
		return nil, fmt.Errorf("%s: rect height: %w", rect.Pos, err)
	}
	var style RectStyle
	if v := attrs["fill"]; v != "" {
		c := resolveColor(v, ctx.res)
		style.Fill = &c
	}
	if v := attrs["stroke"]; v != "" {
		c := resolveColor(v, ctx.res)
		style.Stroke = &c
	}
	if v := attrs["stroke-width"]; v != "" {
		if style.StrokeWidth, err = ParseDimension(v, 0); err != nil {
			return nil, fmt.Errorf("%s: rect stroke-width: %w", rect.Pos, err)
		}
	}
	box := NewRectBox(w, h, style)
	if v := attrs["voff"]; v != "" {
		off, err := ParseDimension(v, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: rect voff: %w", rect.Pos, err)
		}
		box.SetVOff(off)
	}
	return box, nil
}

func (ctx *flowContext) buildImage(im *dsl.Image) (*ImageBox, error) {
	name, attrs := parseArgs(im.Args, true)
	src := name
	var (
		w, h       SizeSpec
		hasW, hasH bool
	)
	if img, ok := ctx.res.Images[name]; ok {
		src = img.Src
		if img.Width > 0 {
			w, hasW = Fixed(img.Width), true
		}
		if img.Height > 0 {
			h, hasH = Fixed(img.Height), true
		}
	}
	if v := attrs["src"]; v != "" {
		src = v
	}
	if src == "" {
		return nil, fmt.Errorf("%s: image 语句缺少资源或 src", im.Pos)
	}
	var err error
	if v := attrs["width"]; v != "" {
		if w, err = parseSizeSpec(v); err != nil {
			return nil, fmt.Errorf("%s: image width: %w", im.Pos, err)
		}
		hasW = true
	}
	if v := attrs["height"]; v != "" {
		if h, err = parseSizeSpec(v); err != nil {
			return nil, fmt.Errorf("%s: image height: %w", im.Pos, err)
		}
		hasH = true
	}
	// 只给出一边时按正方形处理；显式的 0 也算给出
	switch {
	case !hasW && !hasH:
		return nil, fmt.Errorf("%s: image %s 缺少尺寸", im.Pos, src)
	case !hasW:
		w = h
	case !hasH:
		h = w
	}
	img := NewImageBox(src, w, h)
	if v := attrs["voff"]; v != "" {
		off, err := ParseDimension(v, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: image voff: %w", im.Pos, err)
		}
		img.SetVOff(off)
	}
	return img, nil
}

func (ctx *flowContext) fontSize(attrs map[string]string) float64 {
	if v := attrs["size"]; v != "" {
		if l, err := ParseLength(v); err == nil && l.Value > 0 {
			return l.ToMM()
		}
	}
	return ctx.defaults.FontSize
}

// textAttrKeys 是从外层段落继承到文本的属性。
var textAttrKeys = []string{"font", "size", "color"}

func inheritTextAttrs(parent, own map[string]string) map[string]string {
	out := make(map[string]string, len(own)+len(textAttrKeys))
	for _, k := range textAttrKeys {
		if v, ok := parent[k]; ok {
			out[k] = v
		}
	}
	for k, v := range own {
		out[k] = v
	}
	return out
}

// parseSizeSpec 支持绝对长度、百分比（相对提示）与 expand/fill（占满提示）。
func parseSizeSpec(value string) (SizeSpec, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return SizeSpec{}, errors.New("缺少尺寸")
	case v == "expand" || v == "fill":
		return SizeSpec{Policy: SizeExpand}, nil
	case strings.HasSuffix(v, "%"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return SizeSpec{}, fmt.Errorf("无法解析百分比 %q: %w", value, err)
		}
		return Relative(f / 100), nil
	default:
		l, err := ParseLength(v)
		if err != nil {
			return SizeSpec{}, err
		}
		return Fixed(l.ToMM()), nil
	}
}

// snapshotItems 记录段落内每个子节点的放置坐标，坐标相对段落局部原点。
func snapshotItems(box *ParBox) []PlacedItem {
	items := make([]PlacedItem, 0, len(box.Nodes()))
	for _, node := range box.Nodes() {
		item := PlacedItem{
			Kind:    node.Kind().String(),
			Width:   node.Width(),
			Ascent:  node.Ascent(),
			Descent: node.Descent(),
		}
		if p, ok := node.(Positioned); ok {
			item.X, item.Y = p.Position()
		}
		switch n := node.(type) {
		case *TextBox:
			item.Content = n.Content()
		case *ImageBox:
			item.Content = n.Src()
		case *ParBox:
			item.Kind = "par"
		}
		items = append(items, item)
	}
	return items
}

type pageAccumulator struct {
	paragraphs []Paragraph
}

func (p *pageAccumulator) appendParagraph(para Paragraph) {
	p.paragraphs = append(p.paragraphs, para)
}

// pageCollector 管理分页。cursorY 为距页面顶边的距离（向下为正）。
type pageCollector struct {
	width   float64
	height  float64
	margin  Margin
	accs    []*pageAccumulator
	current int
	cursorY float64
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{
		width:  width,
		height: height,
		margin: margin,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	pc.cursorY = pc.margin.Top
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentWidth() float64 {
	return pc.width - pc.margin.Left - pc.margin.Right
}

func (pc *pageCollector) contentHeight() float64 {
	return pc.height - pc.margin.Top - pc.margin.Bottom
}

func (pc *pageCollector) contentBottom() float64 {
	return pc.height - pc.margin.Bottom
}

// ensureSpace 在剩余空间不足时换页；空白页上放不下的段落直接溢出，避免无限换页。
func (pc *pageCollector) ensureSpace(height float64) {
	if pc.cursorY+height <= pc.contentBottom() {
		return
	}
	if len(pc.curr().paragraphs) == 0 {
		return
	}
	pc.newPage()
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:      pc.width,
			Height:     pc.height,
			Margin:     pc.margin,
			Paragraphs: acc.paragraphs,
		}
	}
	return out
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Images: map[string]ImageResource{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, fmt.Errorf("%s: color %s: %w", stmt.Command.Pos, name, err)
				}
				res.Colors[name] = c
			case "image":
				image, err := parseImageResource(stmt.Command)
				if err != nil {
					return res, err
				}
				if image.Name != "" {
					res.Images[image.Name] = image
				}
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts[defaultFontName] = FontResource{
			Name:   defaultFontName,
			Src:    "embed:goregular",
			Family: defaultFontName,
		}
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles

	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "parbox",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := valueToString(stmt.Assignment.Value)
		switch stmt.Assignment.Key {
		case "src":
			font.Src = val
		case "style":
			font.Style = val
		case "family":
			font.Family = val
		case "fallback":
			font.Fallback = val
		}
	}
	return font
}

func parseImageResource(cmd *dsl.Command) (ImageResource, error) {
	if len(cmd.Args) == 0 {
		return ImageResource{}, nil
	}
	image := ImageResource{Name: cmd.Args[0].Value}
	if cmd.Block == nil {
		return image, nil
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := valueToString(stmt.Assignment.Value)
		var err error
		switch stmt.Assignment.Key {
		case "src":
			image.Src = val
		case "width":
			image.Width, err = ParseDimension(val, 0)
		case "height":
			image.Height, err = ParseDimension(val, 0)
		}
		if err != nil {
			return image, fmt.Errorf("%s: image %s %s: %w", cmd.Pos, image.Name, stmt.Assignment.Key, err)
		}
	}
	return image, nil
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := valueToString(stmt.Assignment.Value); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// LookupPageSize 返回预设纸张（A3/A4/A5/Letter，不区分大小写）的纵向宽高（mm）。
func LookupPageSize(name string) (width, height float64, ok bool) {
	base, ok := pagePresets[strings.ToUpper(strings.TrimSpace(name))]
	return base[0], base[1], ok
}

func resolvePageSize(spec dsl.PageSpec, fallback string) (float64, float64, error) {
	size := spec.Size
	if strings.EqualFold(size, "default") {
		size = fallback
	}
	width, height, ok := LookupPageSize(size)
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	for _, token := range spec.Params {
		if token.Value == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

// resolveMargin 按 CSS 语义解析 margin 之后的 1~4 个长度。
func resolveMargin(params []*dsl.Lexeme, fallback Margin) Margin {
	margin := fallback
	for i := 0; i < len(params); i++ {
		if params[i].Value != "margin" {
			continue
		}
		var vals []float64
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			if params[j].Type != "Number" {
				break
			}
			l, err := ParseLength(params[j].Value)
			if err != nil {
				break
			}
			vals = append(vals, l.ToMM())
		}
		if m, ok := MarginFromValues(vals); ok {
			margin = m
		}
	}
	return margin
}

// MarginFromValues 按 CSS 简写规则把 1~4 个值展开为四边边距。
func MarginFromValues(vals []float64) (Margin, bool) {
	switch len(vals) {
	case 1:
		v := vals[0]
		return Margin{Top: v, Right: v, Bottom: v, Left: v}, true
	case 2:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, true
	case 3:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, true
	case 4:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, true
	default:
		return Margin{}, false
	}
}

// parseArgs 把 "key value" 形式的参数解析成 map。参数个数为奇数且第一个是标识符时，
// 第一个参数视为样式（或资源）名。
func parseArgs(args []*dsl.Lexeme, allowStyle bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}

	cursor := 0
	var style string
	if allowStyle && args[0].Type == "Ident" && len(args)%2 == 1 {
		style = args[0].Value
		cursor = 1
	}
	for cursor < len(args)-1 {
		result[args[cursor].Value] = args[cursor+1].Value
		cursor += 2
	}
	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if font, ok := res.Fonts[defaultFontName]; ok {
		return font, nil
	}
	for _, font := range res.Fonts {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

func resolveColor(value string, res ResourceSet) Color {
	if value == "" {
		return defaultTextColor
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return defaultTextColor
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	if len(value) == 3 {
		value = string([]byte{value[0], value[0], value[1], value[1], value[2], value[2]})
	}
	if len(value) != 6 && len(value) != 8 {
		return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
	}
	rgb, err := strconv.ParseUint(value[:6], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 #%s 无法解析: %w", value, err)
	}
	r := int(rgb>>16) & 0xff
	g := int(rgb>>8) & 0xff
	b := int(rgb) & 0xff
	return Color{R: r, G: g, B: b}, nil
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch strings.ToLower(align) {
	case "center", "middle":
		return (container - width) / 2
	case "right", "end":
		return container - width
	default:
		return 0
	}
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Ident != nil:
		return *val.Ident
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array == nil {
		if s := valueToString(val); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(val.Array.Values))
	for _, item := range val.Array.Values {
		if s := valueToString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
