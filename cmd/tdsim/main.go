package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tdslab/tdsim/internal/config"
	"github.com/tdslab/tdsim/internal/physics"
	"github.com/tdslab/tdsim/internal/scenario"
	"github.com/tdslab/tdsim/internal/sim"
	"github.com/tdslab/tdsim/internal/storage"
	"github.com/tdslab/tdsim/internal/tui"
	"github.com/tdslab/tdsim/internal/validate"
	"github.com/tdslab/tdsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	steps     int
	seedNode  int
	seedField float64
	workers   int
	plot      bool
	render    bool
	store     bool
	frameRate int
	outPath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tdsim",
		Short: "reversible symmetry-dynamics lattice simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "preset configuration name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine events")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and report conservation and anomalies",
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&steps, "steps", 200, "steps to run")
	runCmd.Flags().IntVar(&seedNode, "seed-node", -1, "node id to perturb before running (-1 = none)")
	runCmd.Flags().Float64Var(&seedField, "seed-field", 0.5, "injected EAsym for --seed-node")
	runCmd.Flags().IntVar(&workers, "workers", 0, "phase worker goroutines (0 = config value)")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot EAsym and mode amplitude series")
	runCmd.Flags().BoolVar(&render, "render-final", false, "render the final lattice")
	runCmd.Flags().BoolVar(&store, "store", false, "persist the run under the data directory")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "run a reversibility cycle and conservation audit",
		RunE:  runValidate,
	}
	validateCmd.Flags().IntVar(&steps, "steps", 100, "forward steps (same number backward)")
	validateCmd.Flags().IntVar(&seedNode, "seed-node", -1, "node id to perturb before validating")
	validateCmd.Flags().Float64Var(&seedField, "seed-field", 0.5, "injected EAsym for --seed-node")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [name]",
		Short: "run reference scenarios (all when no name given)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive live view",
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 12, "frame rate")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "run a simulation and emit the stats series as CSV",
		RunE:  runExport,
	}
	exportCmd.Flags().IntVar(&steps, "steps", 200, "steps to run")
	exportCmd.Flags().IntVar(&seedNode, "seed-node", -1, "node id to perturb before running")
	exportCmd.Flags().Float64Var(&seedField, "seed-field", 0.5, "injected EAsym for --seed-node")
	exportCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(config.Presets))
			for n := range config.Presets {
				names = append(names, n)
			}
			sort.Strings(names)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, n := range names {
				p := config.Presets[n]
				fmt.Fprintf(w, "%s\t%v %s\tJ=%.2g E0=%.2g\n", n, p.Extents, p.Boundary, p.J, p.E0)
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	rootCmd.AddCommand(runCmd, validateCmd, scenarioCmd, liveCmd, exportCmd, presetsCmd, listCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		p, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		return p.Clone(), nil
	}
	return config.DefaultConfig(), nil
}

func buildSimulation() (*sim.Simulation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	s, err := sim.New(cfg, logger())
	if err != nil {
		return nil, err
	}
	if seedNode >= 0 {
		if err := s.SeedAnomaly(seedNode, seedField); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	s, err := buildSimulation()
	if err != nil {
		return err
	}

	corrections := 0
	for i := 0; i < steps; i++ {
		report, err := s.Step(physics.Forward)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		corrections += len(report.Violations)
	}

	snap := s.Snapshot()
	panelData := s.Analytics().StatsPanelData()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", steps)
	fmt.Fprintf(w, "E_sym\t%.6f\n", snap.Energies.ESym)
	fmt.Fprintf(w, "E_asym\t%.6f\n", snap.Energies.EAsym)
	fmt.Fprintf(w, "E_0\t%.6f\n", snap.Energies.E0)
	fmt.Fprintf(w, "deviation\t%.3e\n", snap.Energies.Total()-snap.Energies.E0)
	fmt.Fprintf(w, "T_info\t%.4f\n", snap.Tension)
	fmt.Fprintf(w, "anomalies\t%d\n", snap.Stats.CountAnomalous)
	fmt.Fprintf(w, "corrections\t%d\n", corrections)
	fmt.Fprintf(w, "rho(E_sym,E_asym)\t%.4f\n", panelData.Rho)
	fmt.Fprintf(w, "A_kx rms\t%.6f\n", panelData.RMSAkx)
	w.Flush()

	if plot {
		_, _, easym, akx := s.Analytics().Series()
		fmt.Println("\nE_asym:")
		fmt.Println(asciigraph.Plot(easym, asciigraph.Height(10), asciigraph.Width(70)))
		fmt.Println("\nA_kx:")
		fmt.Println(asciigraph.Plot(akx, asciigraph.Height(10), asciigraph.Width(70)))
	}
	if render {
		fmt.Println()
		fmt.Print(viz.SpinGrid(snap.Lattice, 0))
		fmt.Println(viz.Legend())
	}
	if store {
		id, err := saveRun(s, "", int64(steps), corrections)
		if err != nil {
			return err
		}
		fmt.Printf("\nstored run %s\n", id)
	}
	return nil
}

func saveRun(s *sim.Simulation, scenarioName string, steps int64, corrections int) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	snap := s.Snapshot()
	return st.Save(storage.RunMetadata{
		Scenario:       scenarioName,
		Steps:          steps,
		Config:         s.Config(),
		FinalESym:      snap.Energies.ESym,
		FinalEAsym:     snap.Energies.EAsym,
		FinalTension:   snap.Tension,
		AnomalyCount:   snap.Stats.CountAnomalous,
		CorrectionHits: corrections,
	}, s.Analytics().ExportStatsToCSV())
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := buildSimulation()
	if err != nil {
		return err
	}
	v := validate.New(s.Config(), validate.DefaultWeights, logger())

	rep, err := v.Run(s.Lattice(), steps)
	if err != nil {
		return err
	}
	consRep, err := v.ValidateConservation(s.Lattice(), steps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "cycle steps\t%d forward + %d backward\n", steps, steps)
	fmt.Fprintf(w, "reversibility score\t%.6f\n", rep.Score)
	fmt.Fprintf(w, "energy drift\t%.3e\n", rep.EnergyDrift)
	fmt.Fprintf(w, "state deviation\t%.4f\n", rep.StateDeviation)
	fmt.Fprintf(w, "max deviation\t%.3e\n", consRep.MaxDeviation)
	fmt.Fprintf(w, "mean deviation\t%.3e\n", consRep.MeanDeviation)
	fmt.Fprintf(w, "conservation\t%s\n", v.ConservationStatus(consRep))
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	names := scenario.Names()
	if len(args) == 1 {
		names = []string{args[0]}
	}

	log := logger()
	failed := 0
	for _, name := range names {
		res, err := scenario.Run(name, log)
		if err != nil {
			return err
		}
		verdict := "PASS"
		if !res.Passed {
			verdict = "FAIL"
			failed++
		}
		desc, _ := scenario.Describe(name)
		fmt.Printf("%-8s %s  %s\n         %s\n", name, verdict, desc, res.Details)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(names))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := buildSimulation()
	if err != nil {
		return err
	}
	return tui.Run(s, frameRate)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := buildSimulation()
	if err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		if _, err := s.Step(physics.Forward); err != nil {
			return err
		}
	}
	csv := s.Analytics().ExportStatsToCSV()
	if outPath == "" {
		fmt.Print(csv)
		return nil
	}
	return os.WriteFile(outPath, []byte(csv), 0644)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tscenario\tsteps\tanomalies\tE_asym")
	for _, r := range runs {
		name := r.Scenario
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\n",
			r.ID, name, strconv.FormatInt(r.Steps, 10), r.AnomalyCount, r.FinalEAsym)
	}
	return w.Flush()
}
