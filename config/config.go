// Package config 读取 parbox 的排版默认值与输出设置，支持 YAML 与 TOML。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/parbox/layout"
	"github.com/ByLCY/parbox/renderer"
)

var (
	// ErrUnsupportedFormat 表示配置文件扩展名既不是 YAML 也不是 TOML。
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalidValue 表示字段取值无法解析或超出范围。
	ErrInvalidValue = errors.New("invalid config value")
)

// ConfigError 记录出错的字段与原因。
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func invalid(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...), Err: ErrInvalidValue}
}

// Config 是配置文件的顶层结构。长度以字符串书写，例如 "12pt"、"20mm"。
type Config struct {
	Page      PageConfig      `yaml:"page" toml:"page"`
	Paragraph ParagraphConfig `yaml:"paragraph" toml:"paragraph"`
	Font      FontConfig      `yaml:"font" toml:"font"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
}

// PageConfig 对应 DSL 中 `page default` 使用的纸张与边距。
type PageConfig struct {
	// Size 为预设纸张名：A3、A4、A5、Letter。
	Size string `yaml:"size" toml:"size"`
	// Margin 为 1~4 个长度，按 CSS 简写展开，例如 "20mm" 或 "15mm 20mm"。
	Margin string `yaml:"margin" toml:"margin"`
}

// ParagraphConfig 是段落未声明时使用的间距。
type ParagraphConfig struct {
	VSpacing   string `yaml:"vspacing" toml:"vspacing"` // "1.2x" 或绝对长度
	HSpacing   string `yaml:"hspacing" toml:"hspacing"`
	SpaceAfter string `yaml:"space-after" toml:"space-after"`
}

// FontConfig 是默认字号。
type FontConfig struct {
	Size string `yaml:"size" toml:"size"`
}

// OutputConfig 控制渲染输出。
type OutputConfig struct {
	Format     string `yaml:"format" toml:"format"` // pdf 或 svg
	SVGPage    int    `yaml:"svg-page" toml:"svg-page"`
	AssetsDir  string `yaml:"assets-dir" toml:"assets-dir"`
	DebugJSON  string `yaml:"debug-json" toml:"debug-json"`
	DebugItems bool   `yaml:"debug-items" toml:"debug-items"`
}

// Default 返回与 layout.DefaultDefaults 一致的配置。
func Default() *Config {
	return &Config{
		Page:      PageConfig{Size: "A4", Margin: "20mm"},
		Paragraph: ParagraphConfig{VSpacing: "1.2x", HSpacing: "1.5mm", SpaceAfter: "3mm"},
		Font:      FontConfig{Size: "12pt"},
		Output:    OutputConfig{Format: string(renderer.FormatPDF)},
	}
}

// Load 按扩展名读取 YAML（.yaml/.yml）或 TOML（.toml）配置。缺省字段保留 Default 的取值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	cfg, err := Parse(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse 解析指定格式（yaml、yml 或 toml）的配置内容并校验。
func Parse(data []byte, format string) (*Config, error) {
	cfg := Default()
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Message: "YAML 解析失败: " + err.Error(), Err: err}
		}
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, &ConfigError{Message: "TOML 解析失败: " + err.Error(), Err: err}
		}
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("不支持的配置格式 %q", format), Err: ErrUnsupportedFormat}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查所有字段都能被解析。
func (c *Config) Validate() error {
	if _, err := c.LayoutDefaults(); err != nil {
		return err
	}
	if _, ok := renderer.ParseFormat(c.Output.Format); !ok {
		return invalid("output.format", "不支持的输出格式 %q", c.Output.Format)
	}
	if c.Output.SVGPage < 0 {
		return invalid("output.svg-page", "页码不能为负数")
	}
	return nil
}

// LayoutDefaults 将配置转换为 layout.Defaults。
func (c *Config) LayoutDefaults() (layout.Defaults, error) {
	d := layout.DefaultDefaults()

	if c.Page.Size != "" {
		if _, _, ok := layout.LookupPageSize(c.Page.Size); !ok {
			return d, invalid("page.size", "未知的纸张尺寸 %q", c.Page.Size)
		}
		d.PageSize = c.Page.Size
	}
	if c.Page.Margin != "" {
		m, err := parseMargin(c.Page.Margin)
		if err != nil {
			return d, &ConfigError{Field: "page.margin", Message: err.Error(), Err: ErrInvalidValue}
		}
		d.Margin = m
	}
	if c.Font.Size != "" {
		size, err := nonNegative("font.size", c.Font.Size)
		if err != nil {
			return d, err
		}
		if size == 0 {
			return d, invalid("font.size", "字号必须大于 0")
		}
		d.FontSize = size
	}
	if c.Paragraph.VSpacing != "" {
		spec, err := layout.ParseLineHeight(c.Paragraph.VSpacing)
		if err != nil {
			return d, &ConfigError{Field: "paragraph.vspacing", Message: err.Error(), Err: ErrInvalidValue}
		}
		d.VSpacing = spec
	}
	var err error
	if c.Paragraph.HSpacing != "" {
		if d.HSpacing, err = nonNegative("paragraph.hspacing", c.Paragraph.HSpacing); err != nil {
			return d, err
		}
	}
	if c.Paragraph.SpaceAfter != "" {
		if d.SpaceAfter, err = nonNegative("paragraph.space-after", c.Paragraph.SpaceAfter); err != nil {
			return d, err
		}
	}
	return d, nil
}

// RenderFormat 返回校验过的输出格式。
func (c *Config) RenderFormat() renderer.Format {
	f, _ := renderer.ParseFormat(c.Output.Format)
	return f
}

func nonNegative(field, value string) (float64, error) {
	l, err := layout.ParseLength(value)
	if err != nil {
		return 0, &ConfigError{Field: field, Message: err.Error(), Err: ErrInvalidValue}
	}
	if l.Value < 0 {
		return 0, invalid(field, "长度不能为负数：%s", value)
	}
	return l.ToMM(), nil
}

func parseMargin(value string) (layout.Margin, error) {
	fields := strings.Fields(value)
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		l, err := layout.ParseLength(f)
		if err != nil {
			return layout.Margin{}, err
		}
		if l.Value < 0 {
			return layout.Margin{}, fmt.Errorf("边距不能为负数：%s", f)
		}
		vals = append(vals, l.ToMM())
	}
	m, ok := layout.MarginFromValues(vals)
	if !ok {
		return layout.Margin{}, fmt.Errorf("边距需要 1~4 个长度，得到 %d 个", len(vals))
	}
	return m, nil
}
