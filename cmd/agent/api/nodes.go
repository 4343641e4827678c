package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ngrewe/digitalocean-flocker-plugin/lib/logger"
)

// ListLiveNodes lists the ids of active compute nodes.
func (s *ApiService) ListLiveNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.Nodes.ListLiveNodes(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to list nodes", "error", err)
		writeError(w, err)
		return
	}
	if nodes == nil {
		nodes = []string{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

// StartNode powers on a node, waiting for it to come up.
func (s *ApiService) StartNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Nodes.StartNode(r.Context(), id); err != nil {
		logger.FromContext(r.Context()).Error("failed to start node", "error", err, "node_id", id)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
