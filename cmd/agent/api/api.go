package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ngrewe/digitalocean-flocker-plugin/lib/blockdevice"
)

// ApiService exposes the controller's capabilities over HTTP for the
// control plane.
type ApiService struct {
	Volumes blockdevice.BlockDeviceAPI
	Nodes   blockdevice.CloudAPI
}

// New creates a new ApiService.
func New(volumes blockdevice.BlockDeviceAPI, nodes blockdevice.CloudAPI) *ApiService {
	return &ApiService{
		Volumes: volumes,
		Nodes:   nodes,
	}
}

// Router builds the HTTP routes for the service.
func (s *ApiService) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.GetHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/volumes", s.ListVolumes)
		r.Post("/volumes", s.CreateVolume)
		r.Delete("/volumes/{id}", s.DestroyVolume)
		r.Post("/volumes/{id}/attach", s.AttachVolume)
		r.Post("/volumes/{id}/detach", s.DetachVolume)
		r.Get("/volumes/{id}/device", s.GetDevicePath)
		r.Get("/nodes", s.ListLiveNodes)
		r.Post("/nodes/{id}/start", s.StartNode)
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps controller errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var actionErr *blockdevice.ActionError
	switch {
	case errors.Is(err, blockdevice.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: "volume not found"})
	case errors.Is(err, blockdevice.ErrNodeNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: "node not found"})
	case errors.Is(err, blockdevice.ErrAlreadyAttached):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "already_attached", Message: "volume already attached"})
	case errors.Is(err, blockdevice.ErrNotAttached):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "not_attached", Message: "volume not attached"})
	case errors.Is(err, blockdevice.ErrAwaitTimeout):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Code: "timeout", Message: "timed out waiting for provider action"})
	case errors.As(err, &actionErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: "action_failed", Message: actionErr.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
