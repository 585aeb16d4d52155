package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/ramancert/internal/chart"
	"github.com/verte-zerg/ramancert/internal/config"
	"github.com/verte-zerg/ramancert/internal/inspectui"
	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
	"github.com/verte-zerg/ramancert/internal/stats"
	"github.com/verte-zerg/ramancert/internal/store"
	"github.com/verte-zerg/ramancert/internal/synth"
)

const (
	defaultCompareOut = "comparison.png"
	defaultSynthOut   = "synthetic"
	defaultTableRows  = 20
	plainPlotHeight   = 12
)

var (
	inspectPlain    bool
	inspectBaseline float64

	compareBaseline float64
	compareOut      string

	historySerial int
	historySince  string
	historyLast   int

	synthOut  string
	synthRows int
	synthSeed int64
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [base]",
		Short: "Inspect a spectrum",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspectCmd,
	}
	cmd.Flags().BoolVar(&inspectPlain, "plain", false, "print summary, plot and table instead of the UI")
	cmd.Flags().Float64Var(&inspectBaseline, "baseline", 0, "normalize against this minimum instead of the spectrum's own")
	return cmd
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	base := defaultSource
	if fileCfg.Report.Source != nil {
		base = *fileCfg.Report.Source
	}
	if len(args) == 1 {
		base = args[0]
	}
	s, err := spectrum.Load(strings.TrimSuffix(base, spectrum.FileExt))
	if err != nil {
		return fmt.Errorf("failed to load spectrum: %w", err)
	}

	var baseline *float64
	if cmd.Flags().Changed("baseline") {
		if err := s.CheckBaseline(inspectBaseline); err != nil {
			return fmt.Errorf("--baseline: %w", err)
		}
		baseline = &inspectBaseline
	}
	acc := acceptanceFromConfig(fileCfg)

	if inspectPlain {
		if baseline != nil {
			s.NormalizeFrom(*baseline)
		}
		return printInspect(cmd, s, acc)
	}

	m := inspectui.NewModel(s, acc, baseline)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run inspect TUI: %w", err)
	}
	return nil
}

func printInspect(cmd *cobra.Command, s *spectrum.Spectrum, acc model.Acceptance) error {
	out := cmd.OutOrStdout()
	sum := stats.Summarize(s)
	if err := stats.RenderSummary(out, sum); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	verdict := stats.Evaluate(sum, acc)
	if _, err := fmt.Fprintf(out, "Result: %s\n", verdict.Label()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, reason := range verdict.Reasons {
		if _, err := fmt.Fprintf(out, "  %s\n", reason); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintln(out, ""); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSpectrumPlot(out, s, false, 0, plainPlotHeight, false); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	if _, err := fmt.Fprintln(out, ""); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderDataTable(out, s, defaultTableRows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func acceptanceFromConfig(fileCfg config.FileConfig) model.Acceptance {
	var acc model.Acceptance
	if v := fileCfg.Acceptance.PeakPosition; v != nil {
		acc.PeakPosition = *v
	}
	if v := fileCfg.Acceptance.PeakTolerance; v != nil {
		acc.PeakTolerance = *v
	}
	if v := fileCfg.Acceptance.MinIntensity; v != nil {
		acc.MinIntensity = *v
	}
	return acc
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare base...",
		Short: "Overlay normalized spectra against a shared baseline",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCompareCmd,
	}
	cmd.Flags().Float64Var(&compareBaseline, "baseline", 0, "shared minimum (default: lowest minimum across inputs)")
	cmd.Flags().StringVar(&compareOut, "out", defaultCompareOut, "overlay image path")
	return cmd
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	spectra := make([]*spectrum.Spectrum, 0, len(args))
	for _, base := range args {
		s, err := spectrum.Load(strings.TrimSuffix(base, spectrum.FileExt))
		if err != nil {
			return fmt.Errorf("failed to load spectrum: %w", err)
		}
		spectra = append(spectra, s)
	}

	baseline := spectrum.SharedBaseline(spectra)
	if cmd.Flags().Changed("baseline") {
		baseline = compareBaseline
	}

	traces := make([]chart.Trace, 0, len(spectra))
	series := make([]stats.Series, 0, len(spectra))
	for i, s := range spectra {
		if err := s.CheckBaseline(baseline); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		s.NormalizeFrom(baseline)
		traces = append(traces, chart.Trace{
			Name:   s.Name,
			X:      s.Shifts(),
			Y:      s.Normalized(),
			Color:  chart.PaletteColor(i),
			Marker: true,
		})
		series = append(series, stats.Series{Name: s.Name, X: s.Shifts(), Y: s.Normalized()})
	}

	opts := chart.DefaultOptions()
	opts.YLabel = "Normalized Intensity"
	if err := chart.SaveFile(compareOut, opts, traces...); err != nil {
		return fmt.Errorf("failed to render comparison: %w", err)
	}
	logErrf("Wrote comparison %s (baseline %.2f)\n", compareOut, baseline)

	title := fmt.Sprintf("Normalized Intensity vs Raman Shift, cm-1 (baseline %.2f)", baseline)
	if err := stats.PlotSeries(cmd.OutOrStdout(), title, series, 0, plainPlotHeight); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List issued certificates",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historySerial, "serial", 0, "device serial filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N certificates")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(registerPath(fileCfg))
	if err != nil {
		return fmt.Errorf("failed to open register: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close register: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := stats.BuildHistory(ctx, st, model.HistoryFilter{
		Serial: historySerial,
		Since:  sinceTime,
		Last:   historyLast,
	})
	if err != nil {
		return err
	}
	if err := stats.RenderHistory(cmd.OutOrStdout(), records); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSynthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic polystyrene spectrum",
		Args:  cobra.NoArgs,
		RunE:  runSynthCmd,
	}
	cmd.Flags().StringVar(&synthOut, "out", defaultSynthOut, "output base path (.tsv is appended)")
	cmd.Flags().IntVar(&synthRows, "rows", synth.DefaultOptions().Rows, "number of rows")
	cmd.Flags().Int64Var(&synthSeed, "seed", 0, "random seed (default: clock)")
	return cmd
}

func runSynthCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	device := model.Device{Serial: defaultSerial, Model: defaultModel, Type: defaultType, Wavelength: defaultWavelength}
	if v := fileCfg.Device.Serial; v != nil {
		device.Serial = *v
	}
	if v := fileCfg.Device.Model; v != nil {
		device.Model = *v
	}
	if v := fileCfg.Device.Type; v != nil {
		device.Type = *v
	}
	if v := fileCfg.Device.Wavelength; v != nil {
		device.Wavelength = *v
	}

	gen := synth.New()
	if cmd.Flags().Changed("seed") {
		gen = synth.NewSeeded(synthSeed)
	}
	opts := synth.DefaultOptions()
	opts.Rows = synthRows
	points, err := gen.Spectrum(opts)
	if err != nil {
		return err
	}

	path := strings.TrimSuffix(synthOut, spectrum.FileExt) + spectrum.FileExt
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := synth.WriteTSV(f, synth.Header{Device: device, Date: time.Now()}, points); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	logErrf("Wrote %s (%d rows)\n", path, len(points))
	return nil
}
