package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ngrewe/digitalocean-flocker-plugin/lib/blockdevice"
	"github.com/ngrewe/digitalocean-flocker-plugin/lib/logger"
)

type volumeResponse struct {
	ID         string `json:"id"`
	SizeBytes  int64  `json:"size_bytes"`
	AttachedTo string `json:"attached_to,omitempty"`
	DatasetID  string `json:"dataset_id,omitempty"`
}

func toVolumeResponse(v blockdevice.Volume) volumeResponse {
	resp := volumeResponse{
		ID:         v.ID,
		SizeBytes:  v.SizeBytes,
		AttachedTo: v.AttachedTo,
	}
	if v.DatasetID != nil {
		resp.DatasetID = v.DatasetID.String()
	}
	return resp
}

type createVolumeRequest struct {
	DatasetID string `json:"dataset_id"`
	SizeBytes int64  `json:"size_bytes"`
}

type attachVolumeRequest struct {
	NodeID string `json:"node_id"`
}

// ListVolumes lists the volumes owned by this cluster.
func (s *ApiService) ListVolumes(w http.ResponseWriter, r *http.Request) {
	vols, err := s.Volumes.ListVolumes(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to list volumes", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(vols, func(v blockdevice.Volume, _ int) volumeResponse {
		return toVolumeResponse(v)
	}))
}

// CreateVolume provisions a volume for a dataset.
func (s *ApiService) CreateVolume(w http.ResponseWriter, r *http.Request) {
	var req createVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid request body"})
		return
	}
	datasetID, err := uuid.Parse(req.DatasetID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "dataset_id must be a UUID"})
		return
	}

	vol, err := s.Volumes.CreateVolume(r.Context(), datasetID, req.SizeBytes)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to create volume", "error", err, "dataset_id", datasetID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVolumeResponse(*vol))
}

// DestroyVolume deletes a volume, detaching it first when needed.
func (s *ApiService) DestroyVolume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Volumes.DestroyVolume(r.Context(), id); err != nil {
		logger.FromContext(r.Context()).Error("failed to destroy volume", "error", err, "volume_id", id)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachVolume attaches a volume to a node.
func (s *ApiService) AttachVolume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req attachVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: "invalid request body"})
		return
	}

	vol, err := s.Volumes.AttachVolume(r.Context(), id, req.NodeID)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to attach volume", "error", err, "volume_id", id, "node_id", req.NodeID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVolumeResponse(*vol))
}

// DetachVolume detaches a volume from its current node.
func (s *ApiService) DetachVolume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vol, err := s.Volumes.DetachVolume(r.Context(), id)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to detach volume", "error", err, "volume_id", id)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVolumeResponse(*vol))
}

// GetDevicePath returns the host device node of an attached volume.
func (s *ApiService) GetDevicePath(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	path, err := s.Volumes.GetDevicePath(r.Context(), id)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to resolve device path", "error", err, "volume_id", id)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"device_path": path})
}
