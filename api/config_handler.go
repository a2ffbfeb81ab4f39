package api

import (
	"net/http"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config   *config.Config `json:"config"`
	Calendar struct {
		First string `json:"first,omitempty"`
		Last  string `json:"last,omitempty"`
		Count int    `json:"count"`
	} `json:"calendar"`
}

// handleGetConfig returns the running configuration.
// The API token is excluded via its json:"-" tag.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	var resp ConfigResponse
	resp.Config = s.cfg
	cal := s.svc.Calendar()
	resp.Calendar.Count = cal.Len()
	if p, ok := cal.First(); ok {
		resp.Calendar.First = p.String()
	}
	if p, ok := cal.Last(); ok {
		resp.Calendar.Last = p.String()
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// handleGetConfigKeys returns the masked status of secret settings.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckKeys(s.cfg),
	})
}
