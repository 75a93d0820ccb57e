package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apperrors "github.com/RMahshie/scientiflow/internal/errors"
	"github.com/RMahshie/scientiflow/internal/export"
	"github.com/RMahshie/scientiflow/internal/processing"
	"github.com/RMahshie/scientiflow/internal/series"
	"github.com/RMahshie/scientiflow/internal/style"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	x         string
	ys        []string
	colors    []string
	chartType string
	quality   string
	format    string
	palette   string
	width     int
	height    int
	dpi       float64
	title     string
	xLabel    string
	yLabel    string
	out       string
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "chartctl",
		Short:        "Render publication-quality charts from CSV, JSON or XLSX data",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}
	root.SetOut(stdout)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newPalettesCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{
		chartType: string(series.Line),
		quality:   style.DefaultPreset,
		format:    style.FormatPNG,
		palette:   style.DefaultPalette,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a chart file from a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.x, "x", "", "independent column (empty plots against the row index)")
	f.StringSliceVar(&opts.ys, "y", nil, "dependent columns, comma separated")
	f.StringSliceVar(&opts.colors, "colors", nil, "hex colors matching --y; 'auto' picks from the palette")
	f.StringVarP(&opts.chartType, "type", "t", opts.chartType, "chart type: line, scatter or bar")
	f.StringVarP(&opts.quality, "quality", "q", opts.quality, "quality preset")
	f.StringVarP(&opts.format, "format", "f", opts.format, "output format: png, svg or pdf")
	f.StringVarP(&opts.palette, "palette", "p", opts.palette, "color palette")
	f.IntVar(&opts.width, "width", 0, "width override in pixels")
	f.IntVar(&opts.height, "height", 0, "height override in pixels")
	f.Float64Var(&opts.dpi, "dpi", 0, "DPI override")
	f.StringVar(&opts.title, "title", "", "chart title")
	f.StringVar(&opts.xLabel, "x-label", "", "x axis title")
	f.StringVar(&opts.yLabel, "y-label", "", "y axis title")
	f.StringVarP(&opts.out, "out", "o", "", "output path, '-' for stdout (default: generated file name)")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}

func runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	ctx := cmd.Context()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	_ = viper.BindEnv("RSVG_CONVERT_PATH")
	rsvg := export.NewRSVGConverter(viper.GetString("RSVG_CONVERT_PATH"))
	svc := processing.NewChartService(export.NewEncoder(export.NewChartRenderer(rsvg)), nil)

	ds, err := svc.ParseUpload(ctx, filepath.Base(path), content)
	if err != nil {
		return cliError(err)
	}

	specs, err := seriesSpecs(opts.ys, opts.colors)
	if err != nil {
		return err
	}

	req := &processing.ChartRequest{
		Data:      ds,
		XColumn:   opts.x,
		YColumns:  specs,
		ChartType: opts.chartType,
		FileName:  filepath.Base(path),
		Title:     opts.title,
		XLabel:    opts.xLabel,
		YLabel:    opts.yLabel,
	}
	exportOpts := processing.ExportOptions{
		Quality: opts.quality,
		Format:  strings.ToLower(opts.format),
		Palette: opts.palette,
	}
	flags := cmd.Flags()
	if flags.Changed("width") {
		exportOpts.Width = &opts.width
	}
	if flags.Changed("height") {
		exportOpts.Height = &opts.height
	}
	if flags.Changed("dpi") {
		exportOpts.DPI = &opts.dpi
	}
	if !style.IsSupportedFormat(exportOpts.Format) {
		return fmt.Errorf("unsupported format %q: use png, svg or pdf", opts.format)
	}

	out, err := svc.ExportChart(ctx, req, exportOpts)
	if err != nil {
		return cliError(err)
	}
	for _, name := range out.Skipped {
		log.Warn().Str("column", name).Msg("Column skipped: no numeric values")
	}

	if opts.out == "-" {
		_, err = cmd.OutOrStdout().Write(out.Content)
		return err
	}
	dest := opts.out
	if dest == "" {
		dest = out.Filename
	}
	if err := os.WriteFile(dest, out.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	log.Info().
		Str("file", dest).
		Str("dimensions", out.Dimensions()).
		Int("dpi", out.DPI).
		Str("palette", out.Palette).
		Msg("Chart written")
	return nil
}

// seriesSpecs pairs column names with optional colors by position.
func seriesSpecs(names, colors []string) ([]series.Spec, error) {
	if len(colors) > len(names) {
		return nil, fmt.Errorf("got %d colors for %d columns", len(colors), len(names))
	}
	specs := make([]series.Spec, len(names))
	for i, name := range names {
		specs[i] = series.Spec{Name: strings.TrimSpace(name)}
		if i < len(colors) {
			specs[i].Color = strings.TrimSpace(colors[i])
		}
	}
	return specs, nil
}

func cliError(err error) error {
	if apperrors.GetCode(err) != "" {
		return fmt.Errorf("%s", apperrors.UserMessage(err))
	}
	return err
}

func newPresetsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List quality presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), style.Presets())
			}
			var rows [][]string
			for _, p := range style.Presets() {
				name := p.Name
				if p.Name == style.DefaultPreset {
					name += defaultLabel.Render(" (default)")
				}
				rows = append(rows, []string{
					name,
					fmt.Sprintf("%dx%d", p.Width, p.Height),
					fmt.Sprintf("%g", p.Scale),
					fmt.Sprintf("%d", p.DPI),
					p.UseCase,
				})
			}
			return renderTable(cmd.OutOrStdout(), []string{"Name", "Size", "Scale", "DPI", "Use case"}, rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newPalettesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "palettes",
		Short: "List color palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), style.Palettes())
			}
			var rows [][]string
			for _, p := range style.Palettes() {
				rows = append(rows, []string{p.Name, strings.Join(p.Colors, " "), p.Recommendation})
			}
			return renderTable(cmd.OutOrStdout(), []string{"Name", "Colors", "Recommended for"}, rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
