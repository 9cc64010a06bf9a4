package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/parbox/config"
	"github.com/ByLCY/parbox/dsl"
	"github.com/ByLCY/parbox/layout"
)

// buildFlags are shared by every command that lays out a document.
type buildFlags struct {
	configPath string
	dataPath   string
	items      bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "YAML or TOML config file")
	cmd.Flags().StringVarP(&f.dataPath, "data", "d", "", "JSON file bound to ${...} placeholders")
	cmd.Flags().BoolVar(&f.items, "items", false, "record per-node placements in the layout result")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// loadData 读取 JSON 数据；数字保留为 json.Number 以免精度变化。
func loadData(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("解析数据文件 %s 失败: %w", path, err)
	}
	return data, nil
}

// buildLayout parses input and lays it out with ts.
func buildLayout(ctx context.Context, input string, data any, cfg *config.Config, ts layout.Typesetter, items bool) (*layout.Result, error) {
	logger := loggerFromContext(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prog := newProgress(logger)
	doc, err := dsl.ParseNamed(filepath.Base(input), f)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	logger.Debug("parsed document", "name", doc.Name, "version", doc.Version, "sections", len(doc.Sections))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defaults, err := cfg.LayoutDefaults()
	if err != nil {
		return nil, err
	}
	res, err := layout.Build(doc, data, layout.BuildOptions{
		Typesetter: ts,
		Defaults:   defaults,
		Debug:      layout.DebugOptions{Items: items},
	})
	if err != nil {
		return nil, fmt.Errorf("布局失败: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paragraphs := 0
	for _, p := range res.Pages {
		paragraphs += len(p.Paragraphs)
	}
	prog.done(fmt.Sprintf("Laid out %d paragraphs on %d pages", paragraphs, len(res.Pages)))
	return res, nil
}
