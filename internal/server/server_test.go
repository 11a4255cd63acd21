package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rotcurve/internal/archive/archivetest"
	"github.com/agenthands/rotcurve/internal/compute"
	"github.com/agenthands/rotcurve/internal/config"
	"github.com/agenthands/rotcurve/internal/core"
	"github.com/agenthands/rotcurve/internal/core/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func f(v float64) *float64 { return &v }

func newMockClient() *MockClient {
	return &MockClient{
		Healthy: true,
		GalaxyResult: &model.GalaxyResult{
			RMS:   f(2.1),
			Curve: []model.CurvePoint{{R: 3.0, VObs: 150, VPred: 151}, {R: 1.5, VObs: 100, VPred: 98}},
			Shape: "rows",
		},
		AggregateResult: &model.AggregateResult{
			AggregateRMS: f(3),
			Count:        2,
			PerGalaxy:    []model.GalaxyRMS{{Galaxy: "UGC128", RMS: f(4)}, {Galaxy: "NGC1003", RMS: f(2)}},
		},
		MicroResult: &model.MicroResult{MW: f(80.4)},
	}
}

type harness struct {
	t      *testing.T
	srv    *Server
	router *gin.Engine
}

func newHarness(t *testing.T, client *MockClient) *harness {
	cfg := config.Default()
	cfg.Server.MaxUploadBytes = 1 << 20
	srv := NewServer(cfg, Deps{Client: client})
	return &harness{t: t, srv: srv, router: srv.SetupRouter()}
}

func (h *harness) do(method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (h *harness) newSession() string {
	w := h.do(http.MethodPost, "/sessions", nil, "")
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return h.decode(w)["id"].(string)
}

func (h *harness) loadedSession() string {
	id := h.newSession()
	w := h.do(http.MethodPost, "/sessions/"+id+"/archive", sampleZip(h.t), "application/zip")
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	return id
}

func sampleZip(t *testing.T) []byte {
	return archivetest.Zip(t,
		archivetest.File{Name: "sparc/UGC128.csv", Body: "r,vobs\n1.5,100\n3.0,150"},
		archivetest.File{Name: "sparc/NGC1003_rotmod.dat", Body: "0.5 40 2\n1.0 55 3\n"},
		archivetest.File{Name: "sparc/broken_rotmod.dat", Body: "radius,flux\n1,2\n3,4"},
	)
}

func TestUploadRawArchive(t *testing.T) {
	h := newHarness(t, newMockClient())
	id := h.newSession()

	w := h.do(http.MethodPost, "/sessions/"+id+"/archive", sampleZip(t), "application/zip")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report model.LoadReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, 3, report.Members)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "sparc/broken_rotmod.dat", report.Errors[0].Member)

	w = h.do(http.MethodGet, "/sessions/"+id+"/galaxies", nil, "")
	assert.Equal(t, []interface{}{"NGC1003", "UGC128"}, h.decode(w)["galaxies"])
}

func TestUploadMultipartArchive(t *testing.T) {
	h := newHarness(t, newMockClient())
	id := h.newSession()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "Rotmod_LTG.zip")
	require.NoError(t, err)
	_, err = part.Write(sampleZip(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := h.do(http.MethodPost, "/sessions/"+id+"/archive", body.Bytes(), mw.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Rotmod_LTG.zip", h.decode(w)["label"])
}

func TestUploadErrors(t *testing.T) {
	h := newHarness(t, newMockClient())
	id := h.newSession()

	w := h.do(http.MethodPost, "/sessions/"+id+"/archive", []byte("definitely not a zip"), "application/zip")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/sessions/"+id+"/archive", nil, "application/zip")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/sessions/"+id+"/archive", bytes.Repeat([]byte("x"), 2<<20), "application/zip")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = h.do(http.MethodPost, "/sessions/nope/archive", sampleZip(t), "application/zip")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGalaxyRoutes(t *testing.T) {
	h := newHarness(t, newMockClient())
	id := h.loadedSession()

	w := h.do(http.MethodGet, "/sessions/"+id+"/galaxies/ngc1003", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	observed := h.decode(w)["observed"].(map[string]interface{})
	assert.Equal(t, []interface{}{0.5, 1.0}, observed["x"])

	w = h.do(http.MethodGet, "/sessions/"+id+"/galaxies/NGC1003?format=csv", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "R_kpc,Vobs,eVobs,Vgas,Vdisk,Vbul\n0.5,40,2,0,0,0\n1,55,3,0,0,0\n", w.Body.String())

	w = h.do(http.MethodGet, "/sessions/"+id+"/galaxies/M31", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodPut, "/sessions/"+id+"/selection", []byte(`{"galaxy":"ugc128"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UGC128", h.decode(w)["selected"])

	w = h.do(http.MethodGet, "/sessions/"+id+"/galaxies/UGC128/runs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, h.decode(w)["runs"])
}

func TestComputeAndExport(t *testing.T) {
	h := newHarness(t, newMockClient())
	id := h.loadedSession()

	w := h.do(http.MethodGet, "/sessions/"+id+"/export.csv", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodPost, "/sessions/"+id+"/galaxies/UGC128/compute", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := h.decode(w)
	assert.Equal(t, 2.1, out["result"].(map[string]interface{})["rms"])
	assert.Equal(t, []interface{}{98.0, 151.0}, out["predicted"].(map[string]interface{})["y"])

	w = h.do(http.MethodGet, "/sessions/"+id+"/export.csv", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "R_kpc,V_obs,V_pred\n1.5,100,98\n3,150,151\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "UGC128_curve.csv")

	w = h.do(http.MethodGet, "/sessions/"+id+"/chart.png", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"))
}

func TestAggregateAndExport(t *testing.T) {
	h := newHarness(t, newMockClient())
	id := h.loadedSession()

	w := h.do(http.MethodPost, "/sessions/"+id+"/dwarfs", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := h.decode(w)
	assert.Equal(t, "dwarfs", out["result"].(map[string]interface{})["label"])
	assert.Len(t, out["bars"], 2)

	w = h.do(http.MethodGet, "/sessions/"+id+"/export.csv", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "galaxy,rms_kms\nUGC128,4\nNGC1003,2\n", w.Body.String())

	w = h.do(http.MethodGet, "/sessions/"+id+"/chart.png", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAggregateOnEmptySession(t *testing.T) {
	h := newHarness(t, newMockClient())
	id := h.newSession()
	w := h.do(http.MethodPost, "/sessions/"+id+"/global", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoteErrorsMapTo502(t *testing.T) {
	client := newMockClient()
	h := newHarness(t, client)
	id := h.loadedSession()

	client.Err = &compute.RemoteCallError{Method: "POST", Endpoint: "/compute", StatusCode: 503, Body: "upstream asleep"}
	w := h.do(http.MethodPost, "/sessions/"+id+"/galaxies/UGC128/compute", nil, "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	out := h.decode(w)
	assert.Equal(t, 503.0, out["status"])
	assert.Equal(t, "upstream asleep", out["body"])

	client.Err = &compute.ResponseShapeError{Endpoint: "/compute", Reason: "no macro"}
	w = h.do(http.MethodPost, "/sessions/"+id+"/galaxies/UGC128/compute", nil, "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "response_shape", h.decode(w)["kind"])
}

func TestStaleMapsTo409(t *testing.T) {
	h := newHarness(t, newMockClient())
	c := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(c)
	h.srv.writeError(ctx, core.ErrStale)
	assert.Equal(t, http.StatusConflict, c.Code)
}

func TestDeleteSession(t *testing.T) {
	h := newHarness(t, newMockClient())
	id := h.newSession()

	w := h.do(http.MethodGet, "/sessions/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodDelete, "/sessions/"+id, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = h.do(http.MethodGet, "/sessions/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthMicroMetrics(t *testing.T) {
	h := newHarness(t, newMockClient())

	w := h.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, h.decode(w)["backend"])

	w = h.do(http.MethodGet, "/micro", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 80.4, h.decode(w)["mW_GeV"])

	h.loadedSession()
	w = h.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rotcurve_archive_loads_total")
}

func TestSessionStoreEvictsIdle(t *testing.T) {
	h := newHarness(t, newMockClient())
	st := NewSessionStore(time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	old, err := h.srv.newSession()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Add(old))

	now = now.Add(2 * time.Hour)
	fresh, err := h.srv.newSession()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Add(fresh))

	_, ok := st.Get(old.ID)
	assert.False(t, ok)
	_, ok = st.Get(fresh.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, st.Len())
}

func TestCreateSessionRejectsLocalSource(t *testing.T) {
	h := newHarness(t, newMockClient())

	w := h.do(http.MethodPost, "/sessions", []byte(`{"source":"/etc/passwd"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, h.srv.Sessions.Len())
}
