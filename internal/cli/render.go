package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/parbox/layout"
	"github.com/ByLCY/parbox/renderer"
	canvasrenderer "github.com/ByLCY/parbox/renderer/canvas"
)

type renderOpts struct {
	buildFlags
	output    string
	format    string
	svgPage   int
	assetsDir string
	debugJSON string
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <input.pbx>",
		Short: "Lay out a document and write PDF or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf or svg (default from config)")
	cmd.Flags().IntVar(&opts.svgPage, "svg-page", -1, "page written for SVG output, starting at 0 (default from config)")
	cmd.Flags().StringVar(&opts.assetsDir, "assets", "", "directory for relative font and image paths (default: input directory)")
	cmd.Flags().StringVar(&opts.debugJSON, "debug-json", "", "also write the layout result as JSON to this path")
	return cmd
}

func runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	data, err := loadData(opts.dataPath)
	if err != nil {
		return err
	}

	// 命令行参数优先于配置文件
	format := cfg.RenderFormat()
	if opts.format != "" {
		f, ok := renderer.ParseFormat(opts.format)
		if !ok {
			return fmt.Errorf("不支持的输出格式：%s", opts.format)
		}
		format = f
	}
	svgPage := cfg.Output.SVGPage
	if opts.svgPage >= 0 {
		svgPage = opts.svgPage
	}
	assets := firstNonEmpty(opts.assetsDir, cfg.Output.AssetsDir, filepath.Dir(input))
	debugJSON := firstNonEmpty(opts.debugJSON, cfg.Output.DebugJSON)
	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + string(format)
	}

	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: assets,
		Format:  format,
		SVGPage: svgPage,
	})
	res, err := buildLayout(ctx, input, data, cfg, r, opts.items || cfg.Output.DebugItems)
	if err != nil {
		return err
	}

	if debugJSON != "" {
		if err := layout.WriteDebugJSON(res, debugJSON); err != nil {
			return fmt.Errorf("写入调试 JSON 失败: %w", err)
		}
		logger.Debug("wrote debug json", "path", debugJSON)
	}

	prog := newProgress(logger)
	out, err := renderWith(r, res)
	if err != nil {
		return err
	}
	// 渲染期间被取消时不再写出文件
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %s (%d bytes)", output, len(out)))
	return nil
}

func renderWith(r renderer.Renderer, res *layout.Result) ([]byte, error) {
	out, err := r.Render(res)
	if err != nil {
		return nil, fmt.Errorf("渲染失败: %w", err)
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
