package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-planner/internal/export"
	"github.com/sells-group/site-planner/internal/fetcher"
	"github.com/sells-group/site-planner/internal/model"
	"github.com/sells-group/site-planner/internal/planner"
)

// Handler serves the planning endpoints.
type Handler struct {
	defaults     model.Params
	maxBodyBytes int64
}

// PlanRequest is the JSON body of POST /v1/plan. Omitted thresholds fall
// back to the server defaults.
type PlanRequest struct {
	Demand        []model.DemandPoint `json:"demand"`
	Facilities    []model.Facility    `json:"facilities"`
	MaxWeight     *float64            `json:"max_weight,omitempty"`
	MinWeight     *float64            `json:"min_weight,omitempty"`
	MinDistanceKM *float64            `json:"min_distance_km,omitempty"`
	Strategy      string              `json:"strategy,omitempty"`
}

func (h *Handler) params(req PlanRequest) model.Params {
	p := h.defaults
	if req.MaxWeight != nil {
		p.MaxWeight = *req.MaxWeight
	}
	if req.MinWeight != nil {
		p.MinWeight = *req.MinWeight
	}
	if req.MinDistanceKM != nil {
		p.MinDistanceKM = *req.MinDistanceKM
	}
	if req.Strategy != "" {
		p.Strategy = model.Strategy(req.Strategy)
	}
	return p
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Plan runs the planner on a JSON body and returns the full result.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	res, ok := h.runJSON(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PlanGeoJSON runs the planner and returns the map layers as GeoJSON.
func (h *Handler) PlanGeoJSON(w http.ResponseWriter, r *http.Request) {
	res, ok := h.runJSON(w, r)
	if !ok {
		return
	}
	data, err := export.MarshalGeoJSON(res.Clusters, res.Sites, res.Facilities)
	if err != nil {
		zap.L().Error("api: geojson encode failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "geojson encoding failed")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// PlanUpload accepts a multipart form with "demand" and "facilities" files
// (.xlsx or .csv) plus optional max_weight, min_weight, min_distance_km and
// strategy fields.
func (h *Handler) PlanUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	demandTable, err := formTable(r, "demand")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	facilityTable, err := formTable(r, "facilities")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	demand, _, err := fetcher.LoadDemand(demandTable)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	facilities, _, err := fetcher.LoadFacilities(facilityTable)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := PlanRequest{Strategy: r.FormValue("strategy")}
	for field, dst := range map[string]**float64{
		"max_weight":      &req.MaxWeight,
		"min_weight":      &req.MinWeight,
		"min_distance_km": &req.MinDistanceKM,
	} {
		v := r.FormValue(field)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, field+" must be a number")
			return
		}
		*dst = &f
	}

	res, err := planner.Run(r.Context(), demand, facilities, h.params(req))
	if err != nil {
		writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) runJSON(w http.ResponseWriter, r *http.Request) (*planner.Result, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	res, err := planner.Run(r.Context(), req.Demand, req.Facilities, h.params(req))
	if err != nil {
		writeRunError(w, err)
		return nil, false
	}
	return res, true
}

func formTable(r *http.Request, field string) (*fetcher.Table, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, eris.Errorf("missing %q file", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, eris.Wrapf(err, "read %q file", field)
	}
	return fetcher.ParseTable(header.Filename, data)
}

func writeRunError(w http.ResponseWriter, err error) {
	if eris.Is(err, model.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	zap.L().Error("api: plan failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "plan failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
