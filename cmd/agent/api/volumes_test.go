package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngrewe/digitalocean-flocker-plugin/lib/blockdevice"
)

// stubController serves canned responses for handler tests.
type stubController struct {
	volumes []blockdevice.Volume
	nodes   []string
	err     error
}

func (s *stubController) AllocationUnit() int64 { return 1 << 30 }

func (s *stubController) ComputeInstanceID(context.Context) (string, error) { return "42", s.err }

func (s *stubController) ListVolumes(context.Context) ([]blockdevice.Volume, error) {
	return s.volumes, s.err
}

func (s *stubController) CreateVolume(_ context.Context, datasetID uuid.UUID, sizeBytes int64) (*blockdevice.Volume, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &blockdevice.Volume{ID: "vol-1", SizeBytes: sizeBytes, DatasetID: &datasetID}, nil
}

func (s *stubController) DestroyVolume(context.Context, string) error { return s.err }

func (s *stubController) AttachVolume(_ context.Context, id, nodeID string) (*blockdevice.Volume, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &blockdevice.Volume{ID: id, AttachedTo: nodeID}, nil
}

func (s *stubController) DetachVolume(_ context.Context, id string) (*blockdevice.Volume, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &blockdevice.Volume{ID: id}, nil
}

func (s *stubController) GetDevicePath(context.Context, string) (string, error) {
	return "/dev/sda", s.err
}

func (s *stubController) ListLiveNodes(context.Context) ([]string, error) {
	return s.nodes, s.err
}

func (s *stubController) StartNode(context.Context, string) error { return s.err }

func serveRequest(stub *stubController, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	New(stub, stub).Router().ServeHTTP(rec, req)
	return rec
}

func TestListVolumesHandler(t *testing.T) {
	datasetID := uuid.MustParse("0ff66359-4f63-47c8-a950-ff5de6f6225e")
	stub := &stubController{volumes: []blockdevice.Volume{
		{ID: "vol-1", SizeBytes: 1 << 30, AttachedTo: "42", DatasetID: &datasetID},
	}}

	rec := serveRequest(stub, http.MethodGet, "/v1/volumes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []volumeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "vol-1", got[0].ID)
	assert.Equal(t, "42", got[0].AttachedTo)
	assert.Equal(t, "0ff66359-4f63-47c8-a950-ff5de6f6225e", got[0].DatasetID)
}

func TestCreateVolumeHandlerRejectsBadDatasetID(t *testing.T) {
	rec := serveRequest(&stubController{}, http.MethodPost, "/v1/volumes",
		`{"dataset_id":"not-a-uuid","size_bytes":1073741824}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateVolumeHandler(t *testing.T) {
	rec := serveRequest(&stubController{}, http.MethodPost, "/v1/volumes",
		`{"dataset_id":"0ff66359-4f63-47c8-a950-ff5de6f6225e","size_bytes":1073741824}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got volumeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "vol-1", got.ID)
	assert.Equal(t, int64(1073741824), got.SizeBytes)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", blockdevice.ErrNotFound, http.StatusNotFound},
		{"already attached", blockdevice.ErrAlreadyAttached, http.StatusConflict},
		{"not attached", blockdevice.ErrNotAttached, http.StatusConflict},
		{"await timeout", blockdevice.ErrAwaitTimeout, http.StatusGatewayTimeout},
		{"action failed", &blockdevice.ActionError{ActionID: 1, Status: "errored"}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubController{err: tt.err}
			rec := serveRequest(stub, http.MethodPost, "/v1/volumes/vol-1/attach", `{"node_id":"42"}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestStartNodeHandler(t *testing.T) {
	rec := serveRequest(&stubController{}, http.MethodPost, "/v1/nodes/42/start", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListNodesHandler(t *testing.T) {
	stub := &stubController{nodes: []string{"42", "44"}}
	rec := serveRequest(stub, http.MethodGet, "/v1/nodes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"42", "44"}, got)
}
