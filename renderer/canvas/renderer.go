package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/parbox/fonts"
	"github.com/ByLCY/parbox/layout"
	"github.com/ByLCY/parbox/renderer"
)

const defaultStrokeWidth = 0.2

// Renderer draws layout results via github.com/tdewolff/canvas and measures
// words for the layout stage with the same font faces.
type Renderer struct {
	baseDir string
	format  renderer.Format
	svgPage int

	// injected resources
	fontBlobs  map[string][]byte // by unique name
	imageBlobs map[string][]byte // by unique name
	fontErrs   map[string]error  // Path 读取失败的注入字体
	imageErrs  map[string]error  // Path 读取失败的注入图片

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily

	imageMu sync.Mutex
	images  map[string]image.Image
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Format  renderer.Format     // 默认 PDF
	SVGPage int                 // SVG 只输出一页，从 0 开始
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Images  map[string]Resource // built-in images accessible via built-in:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	format := opts.Format
	if format == "" {
		format = renderer.FormatPDF
	}
	fontBlobs, fontErrs := ingest(opts.Fonts)
	imageBlobs, imageErrs := ingest(opts.Images)
	return &Renderer{
		baseDir:      opts.BaseDir,
		format:       format,
		svgPage:      opts.SVGPage,
		fontBlobs:    fontBlobs,
		imageBlobs:   imageBlobs,
		fontErrs:     fontErrs,
		imageErrs:    imageErrs,
		fontFamilies: map[string]*fontFamilyEntry{},
		images:       map[string]image.Image{},
	}
}

// ingest 读取注入的资源。路径读取失败的错误按名字保留，真正使用该资源时再返回。
func ingest(resources map[string]Resource) (map[string][]byte, map[string]error) {
	out := map[string][]byte{}
	errs := map[string]error{}
	for name, res := range resources {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			out[name] = res.Bytes
			continue
		}
		if res.Path == "" {
			continue
		}
		data, err := os.ReadFile(res.Path)
		switch {
		case err != nil:
			errs[name] = err
		case len(data) == 0:
			errs[name] = fmt.Errorf("资源文件 %s 为空", res.Path)
		default:
			out[name] = data
		}
	}
	return out, errs
}

// Render renders the result into PDF or SVG bytes depending on the configured format.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	switch r.format {
	case renderer.FormatPDF:
		return r.renderPDF(result)
	case renderer.FormatSVG:
		return r.renderSVG(result)
	default:
		return nil, fmt.Errorf("不支持的输出格式：%s", r.format)
	}
}

func (r *Renderer) renderPDF(result *layout.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c, err := r.drawPage(page)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderSVG(result *layout.Result) ([]byte, error) {
	if r.svgPage < 0 || r.svgPage >= len(result.Pages) {
		return nil, fmt.Errorf("SVG 页码 %d 超出范围（共 %d 页）", r.svgPage, len(result.Pages))
	}
	page := result.Pages[r.svgPage]
	c, err := r.drawPage(page)
	if err != nil {
		return nil, fmt.Errorf("第 %d 页: %w", r.svgPage+1, err)
	}

	var buf bytes.Buffer
	writer := svg.New(&buf, page.Width, page.Height, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 SVG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// MeasureText 实现 layout.Typesetter。fontSize 与返回的度量均为 mm，
// 与字体系统交互时换算为 pt。
func (r *Renderer) MeasureText(content string, font layout.FontResource, fontSize float64) (layout.TextMetrics, error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.Color{})
	if err != nil {
		return layout.TextMetrics{}, err
	}
	m := face.Metrics()
	return layout.TextMetrics{
		Width:   face.TextWidth(content),
		Ascent:  m.Ascent,
		Descent: m.Descent,
	}, nil
}

// drawPage 让每个段落把自身渲染到新画布上。布局坐标与画布一致：原点在左下角，y 轴向上。
func (r *Renderer) drawPage(page layout.Page) (*canvas.Canvas, error) {
	c := canvas.New(page.Width, page.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianI)

	d := &pageDrawer{r: r, ctx: ctx}
	for i, para := range page.Paragraphs {
		if para.Box == nil {
			return nil, fmt.Errorf("段落 %d 缺少排版结果", i+1)
		}
		para.Box.Render(d, 0, 0)
		if d.err != nil {
			return nil, fmt.Errorf("段落 %d: %w", i+1, d.err)
		}
	}
	return c, nil
}

// pageDrawer 实现 layout.Renderer。layout.Renderer 的方法没有错误返回，
// 第一次失败会被记下，之后的绘制全部跳过。
type pageDrawer struct {
	r   *Renderer
	ctx *canvas.Context
	err error
}

var _ layout.Renderer = (*pageDrawer)(nil)

func (d *pageDrawer) DrawText(content string, x, y float64, style layout.TextStyle) {
	if d.err != nil {
		return
	}
	face, err := d.r.fontFace(style.Font, toPt(style.Size), style.Color)
	if err != nil {
		d.err = err
		return
	}
	// NewTextLine 的基线落在给定坐标上
	d.ctx.DrawText(x, y, canvas.NewTextLine(face, content, canvas.Left))
}

func (d *pageDrawer) DrawRect(x, y, width, height float64, style layout.RectStyle) {
	if d.err != nil {
		return
	}
	if style.Fill != nil {
		d.ctx.SetFillColor(colorFromLayout(*style.Fill))
	} else {
		d.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	}
	if style.Stroke != nil {
		w := style.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		d.ctx.SetStrokeColor(colorFromLayout(*style.Stroke))
		d.ctx.SetStrokeWidth(w)
	} else {
		d.ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	}
	d.ctx.DrawPath(x, y, canvas.Rectangle(width, height))
}

func (d *pageDrawer) DrawImage(src string, x, y, width, height float64) {
	if d.err != nil {
		return
	}
	img, err := d.r.loadImage(src)
	if err != nil {
		d.err = err
		return
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 || width <= 0 || height <= 0 {
		return
	}
	// 按宽度确定分辨率，纵向再单独缩放到布局给出的高度
	dpmm := float64(bounds.Dx()) / width
	sy := height / (float64(bounds.Dy()) / dpmm)
	d.ctx.Push()
	d.ctx.ComposeView(canvas.Identity.Translate(x, y).Scale(1, sy))
	d.ctx.DrawImage(0, 0, img, canvas.DPMM(dpmm))
	d.ctx.Pop()
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	r.imageMu.Lock()
	defer r.imageMu.Unlock()
	if img, ok := r.images[src]; ok {
		return img, nil
	}

	var (
		img image.Image
		err error
	)
	switch {
	case strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:"):
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		blob, ok := r.imageBlobs[name]
		if !ok {
			if cause, failed := r.imageErrs[name]; failed {
				return nil, fmt.Errorf("读取内置图片资源 built-in:%s 失败: %w", name, cause)
			}
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		img, _, err = image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 built-in:%s 失败: %w", name, err)
		}
	case strings.HasPrefix(src, "embed:"):
		return nil, fmt.Errorf("图片资源 %s 未找到（embed 仅支持内置字体，暂不支持图片）", src)
	default:
		path, err := r.resolvePath(src)
		if err != nil {
			return nil, err
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
		}
		img, _, err = image.Decode(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
		}
	}
	r.images[src] = img
	return img, nil
}

func (r *Renderer) resolvePath(src string) (string, error) {
	if filepath.IsAbs(src) {
		return src, nil
	}
	if r.baseDir == "" {
		return "", fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 built-in: 或 embed:）", src)
	}
	return filepath.Join(r.baseDir, src), nil
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback(font.Fallback)
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		if cause, failed := r.fontErrs[name]; failed {
			return nil, fmt.Errorf("读取内置字体资源 built-in:%s 失败: %w", name, cause)
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	path, err := r.resolvePath(src)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// fallback 在字体加载失败时使用：优先 font 声明的 fallback 内置字体，否则为 fonts.Default。
// 调用方持有 fontMu。
func (r *Renderer) fallback(preferred string) (*canvas.FontFamily, canvas.FontStyle, error) {
	if preferred != "" {
		if data, err := fonts.Load(preferred); err == nil {
			family := canvas.NewFontFamily("parbox-fallback-" + preferred)
			if err := family.LoadFont(data, 0, canvas.FontRegular); err == nil {
				return family, canvas.FontRegular, nil
			}
		}
	}
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("parbox-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	var result canvas.FontStyle
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s|%s", font.Name, font.Src, font.Style, font.Fallback)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
