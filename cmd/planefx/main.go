package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/planefx/internal/aero"
	"github.com/san-kum/planefx/internal/config"
	"github.com/san-kum/planefx/internal/logging"
	"github.com/san-kum/planefx/internal/scenario"
	"github.com/san-kum/planefx/internal/storage"
	"github.com/san-kum/planefx/internal/viz"
)

// main is the entry point for the planefx CLI. Every persistent flag can
// also be set through a PLANEFX_* environment variable.
func main() {
	rootCmd := &cobra.Command{
		Use:           "planefx",
		Short:         "aerodynamic visual effects lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("data", ".planefx", "data directory")
	rootCmd.PersistentFlags().String("tuning", "", "tuning file (yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON lines instead of console output")
	for _, name := range []string{"data", "tuning", "log-level", "log-json"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	viper.SetEnvPrefix("planefx")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	runCmd := &cobra.Command{
		Use:   "run [scenario|preset]",
		Short: "fly a scenario and summarise its effects",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().Bool("save", true, "store the trace under the data directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(viper.GetString("data")).ExportJSON(os.Stdout, args[0])
		},
	}

	soundCmd := &cobra.Command{
		Use:   "sound",
		Short: "plot speed of sound against air density",
		Args:  cobra.NoArgs,
		RunE:  plotSound,
	}
	soundCmd.Flags().Float64("max-density", 1.2, "upper end of the density axis")

	liveCmd := &cobra.Command{
		Use:   "live [scenario|preset]",
		Short: "fly a scenario with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTICKS\tDESCRIPTION")
			for _, name := range scenario.ListPresets() {
				sc, _ := scenario.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%s\n", name, sc.Ticks(), sc.Description)
			}
			return w.Flush()
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario|preset]",
		Short: "fly speed-scaled variants of a scenario in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepScenario,
	}
	sweepCmd.Flags().Float64Slice("speed-scale", []float64{0.8, 0.9, 1.0, 1.1, 1.2}, "speed scale factors")

	tuningCmd := &cobra.Command{
		Use:   "tuning [path]",
		Short: "write the effective tuning to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTuning()
			if err != nil {
				return err
			}
			if err := config.Save(args[0], t); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, soundCmd, liveCmd, presetsCmd, sweepCmd, tuningCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	return logging.New(os.Stderr, viper.GetString("log-level"), !viper.GetBool("log-json"))
}

func loadTuning() (config.Tuning, error) {
	path := viper.GetString("tuning")
	if path == "" {
		return config.DefaultTuning(), nil
	}
	return config.Load(path)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Resolve(args[0])
	if err != nil {
		return err
	}
	tuning, err := loadTuning()
	if err != nil {
		return err
	}
	log := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	trace, err := scenario.Run(ctx, sc, scenario.Options{Tuning: tuning, Logger: log})
	if err != nil {
		return err
	}
	fmt.Println(viz.Summary(trace))

	save, _ := cmd.Flags().GetBool("save")
	if !save {
		return nil
	}
	st := storage.New(viper.GetString("data"))
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(trace)
	if err != nil {
		return err
	}
	cliLog := logging.Component(log, "cli")
	cliLog.Info().Str("run", runID).Msg("trace saved")
	fmt.Printf("saved: %s\n", runID)
	return nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Resolve(args[0])
	if err != nil {
		return err
	}
	tuning, err := loadTuning()
	if err != nil {
		return err
	}
	scales, _ := cmd.Flags().GetFloat64Slice("speed-scale")
	if len(scales) == 0 {
		return fmt.Errorf("at least one speed scale is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	traces, err := scenario.Sweep(ctx, sc, scenario.SpeedVariants(scales...), scenario.Options{Tuning: tuning, Logger: newLogger()})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tPEAK MACH\tTRANSONIC\tVAPOR\tCONTRAILS\tPEAK LIFT\tEFFECTS")
	for _, tr := range traces {
		m := tr.Metrics
		fmt.Fprintf(w, "%s\t%.2f\t%.1f%%\t%.1f%%\t%.1f%%\t%.2f\t%d\n",
			tr.Scenario, m["peak_mach"], 100*m["transonic_dwell"], 100*m["vapor_coverage"],
			100*m["contrail_dwell"], m["peak_lift_intensity"], tr.Effects.Created)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(viper.GetString("data"))
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTICKS\tPEAK MACH\tEFFECTS\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%d\t%s\n",
			r.ID, r.Scenario, r.Ticks, r.Metrics["peak_mach"], r.Effects.Created,
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(viper.GetString("data"))
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(samples))

	plots := []struct {
		caption string
		pick    func(scenario.Sample) float64
	}{
		{"speed (m/s)", func(s scenario.Sample) float64 { return s.Speed }},
		{"transonic scale", func(s scenario.Sample) float64 { return s.TransonicScale }},
		{"lift intensity", func(s scenario.Sample) float64 { return s.LiftIntensity }},
		{"air density", func(s scenario.Sample) float64 { return s.Density }},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(viz.Series(samples, p.pick),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func plotSound(cmd *cobra.Command, args []string) error {
	tuning, err := loadTuning()
	if err != nil {
		return err
	}
	maxDensity, _ := cmd.Flags().GetFloat64("max-density")
	if maxDensity <= 0 {
		return fmt.Errorf("max-density must be positive, got %f", maxDensity)
	}

	const steps = 120
	data := make([]float64, steps+1)
	for i := range data {
		rho := maxDensity * float64(i) / steps
		data[i] = aero.SpeedOfSound(rho, tuning.MinSpeedOfSound)
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("speed of sound (m/s), density 0 to %.2f", maxDensity)),
	)
	fmt.Println(graph)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Resolve(args[0])
	if err != nil {
		return err
	}
	tuning, err := loadTuning()
	if err != nil {
		return err
	}

	m, err := viz.NewModel(func() (*scenario.Session, error) {
		return scenario.NewSession(sc, scenario.Options{Tuning: tuning, Logger: zerolog.Nop()})
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(viz.Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	return err
}
