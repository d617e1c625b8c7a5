// Package planner runs the full siting pass: cluster the demand, pick a
// representative per cluster and test it against existing facilities.
package planner

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-planner/internal/cluster"
	"github.com/sells-group/site-planner/internal/model"
	"github.com/sells-group/site-planner/internal/siting"
)

// Summary aggregates one run.
type Summary struct {
	DemandPoints   int     `json:"demand_points" yaml:"demand_points"`
	Facilities     int     `json:"facilities" yaml:"facilities"`
	Clusters       int     `json:"clusters" yaml:"clusters"`
	Suggested      int     `json:"suggested" yaml:"suggested"`
	TotalWeight    float64 `json:"total_weight" yaml:"total_weight"`
	BelowMinWeight int     `json:"below_min_weight" yaml:"below_min_weight"`
	CenterLat      float64 `json:"center_lat" yaml:"center_lat"`
	CenterLon      float64 `json:"center_lon" yaml:"center_lon"`
}

// Result is everything a run produces. It shares no memory with the caller's
// input slices.
type Result struct {
	RunID      string                `json:"run_id" yaml:"run_id"`
	Params     model.Params          `json:"params" yaml:"params"`
	Clusters   []model.Cluster       `json:"clusters" yaml:"clusters"`
	Sites      []model.SuggestedSite `json:"sites" yaml:"sites"`
	Facilities []model.Facility      `json:"facilities" yaml:"facilities"`
	Summary    Summary               `json:"summary" yaml:"summary"`
}

// SuggestedSites returns only the sites flagged as suggested, in cluster order.
func (r *Result) SuggestedSites() []model.SuggestedSite {
	var out []model.SuggestedSite
	for _, s := range r.Sites {
		if s.Suggested {
			out = append(out, s)
		}
	}
	return out
}

// Run clusters the demand points and evaluates every cluster against the
// facilities. Empty demand yields an empty result, not an error. Invalid
// coordinates, weights or params fail with model.ErrInvalidInput.
func Run(ctx context.Context, demand []model.DemandPoint, facilities []model.Facility, params model.Params) (*Result, error) {
	if params.Strategy == "" {
		params.Strategy = model.StrategySpatial
	}
	if err := model.ValidateFacilities(facilities); err != nil {
		return nil, eris.Wrap(err, "planner: validate facilities")
	}

	demand = slices.Clone(demand)
	facilities = slices.Clone(facilities)

	res := &Result{
		RunID:      uuid.NewString(),
		Params:     params,
		Facilities: facilities,
	}
	log := zap.L().With(zap.String("run_id", res.RunID))
	start := time.Now()

	clusters, err := cluster.Build(demand, params)
	if err != nil {
		return nil, eris.Wrap(err, "planner: build clusters")
	}
	res.Clusters = clusters
	log.Info("planner: clusters formed",
		zap.Int("demand_points", len(demand)),
		zap.Int("clusters", len(clusters)),
		zap.String("strategy", string(params.Strategy)),
		zap.Float64("max_weight", params.MaxWeight),
	)

	sites, err := siting.EvaluateAll(ctx, clusters, facilities, params.MinDistanceKM, params.Workers)
	if err != nil {
		return nil, eris.Wrap(err, "planner: evaluate sites")
	}
	res.Sites = sites

	for _, s := range sites {
		log.Debug("planner: site evaluated",
			zap.Int("cluster_id", s.ClusterID),
			zap.String("representative_id", s.RepresentativeID),
			zap.Float64("total_weight", s.TotalWeight),
			zap.Bool("suggested", s.Suggested),
		)
	}

	res.Summary = summarize(demand, facilities, clusters, sites, params)
	log.Info("planner: run complete",
		zap.Int("clusters", res.Summary.Clusters),
		zap.Int("suggested", res.Summary.Suggested),
		zap.Int("below_min_weight", res.Summary.BelowMinWeight),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func summarize(demand []model.DemandPoint, facilities []model.Facility, clusters []model.Cluster, sites []model.SuggestedSite, params model.Params) Summary {
	s := Summary{
		DemandPoints: len(demand),
		Facilities:   len(facilities),
		Clusters:     len(clusters),
	}
	for _, c := range clusters {
		s.TotalWeight += c.TotalWeight
		if c.TotalWeight < params.MinWeight {
			s.BelowMinWeight++
		}
	}
	for _, site := range sites {
		if site.Suggested {
			s.Suggested++
		}
	}
	if len(demand) > 0 {
		for _, p := range demand {
			s.CenterLat += p.Lat
			s.CenterLon += p.Lon
		}
		s.CenterLat /= float64(len(demand))
		s.CenterLon /= float64(len(demand))
	}
	return s
}
