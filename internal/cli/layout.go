package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/parbox/layout"
	canvasrenderer "github.com/ByLCY/parbox/renderer/canvas"
)

func newLayoutCmd() *cobra.Command {
	var opts buildFlags

	cmd := &cobra.Command{
		Use:   "layout <input.pbx>",
		Short: "Lay out a document and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			data, err := loadData(opts.dataPath)
			if err != nil {
				return err
			}
			assets := cfg.Output.AssetsDir
			if assets == "" {
				assets = filepath.Dir(input)
			}
			// 与 render 使用同一套字体度量，保证坐标一致
			ts := canvasrenderer.NewRenderer(assets)
			res, err := buildLayout(cmd.Context(), input, data, cfg, ts, opts.items || cfg.Output.DebugItems)
			if err != nil {
				return err
			}
			return layout.EncodeDebugJSON(cmd.OutOrStdout(), res)
		},
	}
	opts.register(cmd)
	return cmd
}
