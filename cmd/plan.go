package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/site-planner/internal/config"
	"github.com/sells-group/site-planner/internal/export"
	"github.com/sells-group/site-planner/internal/fetcher"
	"github.com/sells-group/site-planner/internal/planner"
)

// Export file names written to --out-dir.
const (
	sitesFile    = "suggested_locations.csv"
	clustersFile = "clusters_detail.csv"
	workbookFile = "site_plan.xlsx"
	geojsonFile  = "site_plan.geojson"
)

type planOptions struct {
	DemandPath     string
	FacilitiesPath string
	MaxWeight      float64
	MinWeight      float64
	MinDistanceKM  float64
	Strategy       string
	Workers        int
	OutDir         string
	Format         string
	SuggestedOnly  bool
}

var planOpts planOptions

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Cluster demand and suggest new sites from projection and facility files",
	Long: `Reads a demand projections file and an existing facilities file (.xlsx or .csv,
local path or http(s) URL),
clusters the demand and reports which cluster representatives are far enough
from every facility to be proposed as new sites.

Examples:
  # Defaults from config.yaml / PLANNER_* env
  site-planner plan --demand f30_projections.xlsx --facilities workshops.xlsx

  # Override thresholds and write CSV, XLSX and GeoJSON exports
  site-planner plan --demand proj.csv --facilities ws.csv \
    --max-weight 8000 --min-distance-km 10 --out-dir ./out`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyPlanFlags(cmd.Flags(), &cfg.Plan, planOpts)
		if err := cfg.Validate("plan"); err != nil {
			return err
		}
		return runPlan(cmd.Context(), cmd.OutOrStdout(), cfg.Plan, planOpts)
	},
}

// applyPlanFlags copies explicitly set flags over the configured values.
func applyPlanFlags(flags *pflag.FlagSet, plan *config.PlanConfig, opts planOptions) {
	if flags.Changed("max-weight") {
		plan.MaxWeight = opts.MaxWeight
	}
	if flags.Changed("min-weight") {
		plan.MinWeight = opts.MinWeight
	}
	if flags.Changed("min-distance-km") {
		plan.MinDistanceKM = opts.MinDistanceKM
	}
	if flags.Changed("strategy") {
		plan.Strategy = opts.Strategy
	}
	if flags.Changed("workers") {
		plan.Workers = opts.Workers
	}
}

// planReport is what plan prints.
type planReport struct {
	RunID   string          `json:"run_id" yaml:"run_id"`
	Summary planner.Summary `json:"summary" yaml:"summary"`
	Sites   any             `json:"sites" yaml:"sites"`
	Files   []string        `json:"files,omitempty" yaml:"files,omitempty"`
}

func runPlan(ctx context.Context, out io.Writer, plan config.PlanConfig, opts planOptions) error {
	remote := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})

	demandTable, err := fetcher.OpenTable(ctx, remote, opts.DemandPath)
	if err != nil {
		return eris.Wrap(err, "plan: load demand")
	}
	demand, demandStats, err := fetcher.LoadDemand(demandTable)
	if err != nil {
		return eris.Wrap(err, "plan: load demand")
	}

	facilityTable, err := fetcher.OpenTable(ctx, remote, opts.FacilitiesPath)
	if err != nil {
		return eris.Wrap(err, "plan: load facilities")
	}
	facilities, facilityStats, err := fetcher.LoadFacilities(facilityTable)
	if err != nil {
		return eris.Wrap(err, "plan: load facilities")
	}
	zap.L().Info("plan: inputs loaded",
		zap.Int("demand_points", demandStats.Kept),
		zap.Int("demand_dropped", demandStats.Dropped),
		zap.Int("facilities", facilityStats.Kept),
		zap.Int("facilities_dropped", facilityStats.Dropped),
	)

	res, err := planner.Run(ctx, demand, facilities, plan.Params())
	if err != nil {
		return eris.Wrap(err, "plan: run")
	}

	report := planReport{RunID: res.RunID, Summary: res.Summary, Sites: res.Sites}
	if opts.SuggestedOnly {
		report.Sites = res.SuggestedSites()
	}

	if opts.OutDir != "" {
		files, err := writeExports(opts.OutDir, res)
		if err != nil {
			return err
		}
		report.Files = files
	}

	return printReport(out, opts.Format, report)
}

func writeExports(dir string, res *planner.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "plan: create output dir")
	}

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{sitesFile, func(w io.Writer) error { return export.WriteSitesCSV(w, res.Sites) }},
		{clustersFile, func(w io.Writer) error { return export.WriteClustersCSV(w, res.Clusters) }},
		{workbookFile, func(w io.Writer) error { return export.WriteXLSX(w, res.Sites, res.Clusters) }},
		{geojsonFile, func(w io.Writer) error {
			data, err := export.MarshalGeoJSON(res.Clusters, res.Sites, res.Facilities)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}},
	}

	var files []string
	for _, wr := range writers {
		path := filepath.Join(dir, wr.name)
		if err := writeFile(path, wr.write); err != nil {
			return nil, eris.Wrapf(err, "plan: write %s", wr.name)
		}
		files = append(files, path)
	}
	zap.L().Info("plan: exports written", zap.String("dir", dir), zap.Int("files", len(files)))
	return files, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printReport(out io.Writer, format string, report planReport) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return eris.Wrap(err, "plan: encode yaml")
		}
		return enc.Close()
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return eris.Wrap(err, "plan: encode json")
		}
		return nil
	default:
		return eris.Errorf("plan: unknown format %q (want json or yaml)", format)
	}
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planOpts.DemandPath, "demand", "", "demand projections file or URL (.xlsx or .csv)")
	f.StringVar(&planOpts.FacilitiesPath, "facilities", "", "existing facilities file or URL (.xlsx or .csv)")
	f.Float64Var(&planOpts.MaxWeight, "max-weight", 0, "cluster capacity cap (default from config)")
	f.Float64Var(&planOpts.MinWeight, "min-weight", 0, "informational minimum cluster weight (default from config)")
	f.Float64Var(&planOpts.MinDistanceKM, "min-distance-km", 0, "minimum distance from an existing facility (default from config)")
	f.StringVar(&planOpts.Strategy, "strategy", "", "clustering strategy: spatial or bucket (default from config)")
	f.IntVar(&planOpts.Workers, "workers", 0, "concurrent siting evaluations (default from config)")
	f.StringVar(&planOpts.OutDir, "out-dir", "", "write CSV, XLSX and GeoJSON exports to this directory")
	f.StringVar(&planOpts.Format, "format", "json", "stdout format: json or yaml")
	f.BoolVar(&planOpts.SuggestedOnly, "suggested-only", false, "print only suggested sites")
	_ = planCmd.MarkFlagRequired("demand")
	_ = planCmd.MarkFlagRequired("facilities")
	rootCmd.AddCommand(planCmd)
}
