package renderer

import (
	"strings"

	"github.com/ByLCY/parbox/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF 或 SVG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Format 标识输出文件格式。
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
)

// ParseFormat 将 "pdf"/"svg"（不区分大小写）转换为 Format，空串视为 PDF。
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, true
	case FormatSVG:
		return FormatSVG, true
	default:
		return "", false
	}
}
