package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"spamlens/internal/domain"
	"spamlens/internal/logger"
	"spamlens/internal/usecase"
)

const maxBodyBytes = 1 << 20

type messageRequest struct {
	Message     string  `json:"message"`
	Target      string  `json:"target,omitempty"`
	NumFeatures int     `json:"num_features,omitempty"`
	NumSamples  int     `json:"num_samples,omitempty"`
	Seed        *uint64 `json:"seed,omitempty"`
}

type modelResponse struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Kind    string   `json:"kind"`
	Classes []string `json:"classes"`
	Target  string   `json:"target"`
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	info := s.app.Runtime.Info
	writeJSON(w, http.StatusOK, modelResponse{
		Name:    info.Name,
		Version: info.Version,
		Kind:    info.Kind,
		Classes: s.app.Runtime.Classes(),
		Target:  s.app.Runtime.Classes()[s.app.Explain.DefaultTarget()],
	})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	pred, err := s.app.Classify.Classify(r.Context(), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	target := s.app.Explain.DefaultTarget()
	if req.Target != "" {
		idx, err := s.app.Runtime.ClassIndex(req.Target)
		if err != nil {
			writeError(w, r, err)
			return
		}
		target = idx
	}
	exp, err := s.app.Explain.Explain(r.Context(), domain.ExplainRequest{
		Document:    req.Message,
		TargetClass: target,
		NumFeatures: req.NumFeatures,
		NumSamples:  s.samples(req.NumSamples),
		Seed:        req.Seed,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	an, err := s.app.Explain.Analyze(r.Context(), req.Message, usecase.AnalyzeOptions{
		Target:      req.Target,
		NumFeatures: req.NumFeatures,
		NumSamples:  s.samples(req.NumSamples),
		Seed:        req.Seed,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, an)
}

// samples applies the server's sample default, which is lower than the
// batch default to keep interactive latency down.
func (s *Server) samples(n int) int {
	if n == 0 {
		return s.cfg.NumSamples
	}
	return n
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (messageRequest, bool) {
	var req messageRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyInput), errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPredictionTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "error", err)
	}
	jsonError(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
