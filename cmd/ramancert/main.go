// Package main provides the CLI entrypoint for ramancert.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/ramancert/internal/certificate"
	"github.com/verte-zerg/ramancert/internal/config"
	"github.com/verte-zerg/ramancert/internal/export"
	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/store"
)

const (
	defaultSerial     = 10000
	defaultModel      = "miniRaman"
	defaultType       = "Power"
	defaultWavelength = "785"
	defaultOperator   = "Yaroslav Aulin"
	defaultSource     = "polystyrene"
	defaultLogo       = "lightnovo-logo-red-current.png"
	defaultOutput     = "test_report.pdf"
)

var (
	issueSerial     int
	issueModel      string
	issueType       string
	issueWavelength string
	issueOperator   string
	issueSource     string
	issueLogo       string
	issueOutput     string
	issueChart      string
	issueData       string
	issueRecord     bool
	issuePeak       float64
	issueTolerance  float64
	issueMinIntens  float64
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#056608")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C00000")).Bold(true)
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ramancert",
		Short:         "Raman spectrometer quality certificates",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runIssueCmd,
	}

	flags := rootCmd.Flags()
	flags.IntVar(&issueSerial, "serial", defaultSerial, "device serial number")
	flags.StringVar(&issueModel, "model", defaultModel, "device model")
	flags.StringVar(&issueType, "type", defaultType, "device type")
	flags.StringVar(&issueWavelength, "wavelength", defaultWavelength, "laser wavelength, nm")
	flags.StringVar(&issueOperator, "operator", defaultOperator, "operator name")
	flags.StringVar(&issueSource, "source", defaultSource, "spectrum base path (without .tsv)")
	flags.StringVar(&issueLogo, "logo", defaultLogo, "logo image for the page header")
	flags.StringVar(&issueOutput, "out", defaultOutput, "certificate output path")
	flags.StringVar(&issueChart, "chart", "", "chart image path (default: <source name>.png)")
	flags.StringVar(&issueData, "data", "", "also write the spectrum workbook (.xlsx) to this path")
	flags.BoolVar(&issueRecord, "record", false, "add the certificate to the register")
	flags.Float64Var(&issuePeak, "peak", 0, "expected peak position, cm-1")
	flags.Float64Var(&issueTolerance, "peak-tolerance", 0, "allowed peak deviation, cm-1 (0 disables the check)")
	flags.Float64Var(&issueMinIntens, "min-intensity", 0, "minimum max intensity, % (0 disables the check)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newSynthCmd())

	return rootCmd
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func runIssueCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "serial", &issueSerial, fileCfg.Device.Serial)
	applyStringConfig(cmd, "model", &issueModel, fileCfg.Device.Model)
	applyStringConfig(cmd, "type", &issueType, fileCfg.Device.Type)
	applyStringConfig(cmd, "wavelength", &issueWavelength, fileCfg.Device.Wavelength)
	applyStringConfig(cmd, "operator", &issueOperator, fileCfg.Report.Operator)
	applyStringConfig(cmd, "source", &issueSource, fileCfg.Report.Source)
	applyStringConfig(cmd, "logo", &issueLogo, fileCfg.Report.Logo)
	applyStringConfig(cmd, "out", &issueOutput, fileCfg.Report.Output)
	applyStringConfig(cmd, "chart", &issueChart, fileCfg.Report.Chart)
	applyStringConfig(cmd, "data", &issueData, fileCfg.Report.Data)
	applyBoolConfig(cmd, "record", &issueRecord, fileCfg.Register.Enabled)
	applyFloatConfig(cmd, "peak", &issuePeak, fileCfg.Acceptance.PeakPosition)
	applyFloatConfig(cmd, "peak-tolerance", &issueTolerance, fileCfg.Acceptance.PeakTolerance)
	applyFloatConfig(cmd, "min-intensity", &issueMinIntens, fileCfg.Acceptance.MinIntensity)

	cfg := model.ReportConfig{
		Device: model.Device{
			Serial:     issueSerial,
			Model:      issueModel,
			Type:       issueType,
			Wavelength: issueWavelength,
		},
		Operator: issueOperator,
		Source:   strings.TrimSuffix(issueSource, ".tsv"),
		Logo:     issueLogo,
		Output:   issueOutput,
		Chart:    issueChart,
		Acceptance: model.Acceptance{
			PeakPosition:  issuePeak,
			PeakTolerance: issueTolerance,
			MinIntensity:  issueMinIntens,
		},
	}
	if err := validateReportConfig(cfg); err != nil {
		return err
	}

	issued, err := certificate.Issue(cfg)
	if err != nil {
		return err
	}
	rec := issued.Record
	logErrf("Wrote chart %s\n", rec.ChartPath)
	logErrf("Wrote certificate %s\n", rec.DocumentPath)

	if issueData != "" {
		if err := export.WriteWorkbook(issueData, issued.Spectrum, issued.Summary, rec); err != nil {
			return fmt.Errorf("failed to export data: %w", err)
		}
		logErrf("Wrote data workbook %s\n", issueData)
	}
	if issueRecord {
		if err := recordCertificate(cmd.Context(), registerPath(fileCfg), rec); err != nil {
			return err
		}
		logErrf("Recorded certificate %s\n", rec.ID)
	}

	for _, reason := range issued.Verdict.Reasons {
		logErrln(reason)
	}
	return printResult(cmd, issued.Verdict, rec)
}

func printResult(cmd *cobra.Command, verdict model.Verdict, rec model.CertificateRecord) error {
	label := passStyle.Render(verdict.Label())
	if !verdict.Pass {
		label = failStyle.Render(verdict.Label())
	}
	line := fmt.Sprintf("%s SN%d: max %.1f%%, peak %.1f cm-1, %s", rec.Device.Model, rec.Device.Serial, rec.MaxIntensity, rec.PeakPosition, label)
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func recordCertificate(ctx context.Context, path string, rec model.CertificateRecord) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open register: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close register: %v\n", cerr)
		}
	}()
	if err := st.InsertCertificate(ctx, rec); err != nil {
		return fmt.Errorf("failed to record certificate: %w", err)
	}
	return nil
}

func registerPath(fileCfg config.FileConfig) string {
	if fileCfg.Register.Path != nil && strings.TrimSpace(*fileCfg.Register.Path) != "" {
		return *fileCfg.Register.Path
	}
	return config.DefaultDBPath()
}

func validateReportConfig(cfg model.ReportConfig) error {
	if cfg.Device.Serial <= 0 {
		return fmt.Errorf("--serial must be > 0")
	}
	if strings.TrimSpace(cfg.Device.Model) == "" {
		return fmt.Errorf("--model must not be empty")
	}
	if strings.TrimSpace(cfg.Operator) == "" {
		return fmt.Errorf("--operator must not be empty")
	}
	if strings.TrimSpace(cfg.Source) == "" {
		return fmt.Errorf("--source must not be empty")
	}
	if strings.TrimSpace(cfg.Output) == "" {
		return fmt.Errorf("--out must not be empty")
	}
	if cfg.Acceptance.PeakTolerance < 0 {
		return fmt.Errorf("--peak-tolerance must be >= 0")
	}
	if cfg.Acceptance.MinIntensity < 0 || cfg.Acceptance.MinIntensity > 100 {
		return fmt.Errorf("--min-intensity must be between 0 and 100")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# ramancert configuration
# Uncomment a value to enable it. CLI flags override config values.

[device]
# serial = %d              # Device serial number
# model = %q        # Device model
# type = %q             # Device type
# wavelength = %q         # Laser wavelength, nm

[report]
# operator = %q   # Operator name printed on the certificate
# source = %q    # Spectrum base path, .tsv is appended
# logo = %q
# output = %q
# chart = "polystyrene.png"   # Default: <source name>.png
# data = "spectrum.xlsx"      # Also write the spectrum workbook

[acceptance]
# peak-position = 1001.4      # Expected peak, cm-1
# peak-tolerance = 0          # Allowed deviation, cm-1 (0 disables)
# min-intensity = 0           # Minimum max intensity, %% (0 disables)

[register]
# enabled = false             # Record issued certificates
# path = %q
`,
		defaultSerial,
		defaultModel,
		defaultType,
		defaultWavelength,
		defaultOperator,
		defaultSource,
		defaultLogo,
		defaultOutput,
		config.DefaultDBPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
