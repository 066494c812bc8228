package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostfleet/csvimport/internal/config"
	"github.com/hostfleet/csvimport/internal/core"
	"github.com/hostfleet/csvimport/internal/inventory"
)

const sampleCSV = "NAME;HOST_GROUPS;AGENT_IP\nweb-01;Linux servers;10.0.0.1\nweb-02;Linux servers;10.0.0.2\n"

func newTestServer(t *testing.T) (*Server, *inventory.Memory) {
	t.Helper()
	inv := inventory.NewMemory()
	svc := core.NewService(inv, core.Options{
		TmpDir:      t.TempDir(),
		MaxFileSize: 1 << 20,
	}, nil)
	cfg := &config.Config{
		Upload: config.UploadConfig{MaxFileSize: 1 << 20},
	}
	return NewServer(svc, cfg), inv
}

// multipartBody builds a multipart request body with a single file field.
func multipartBody(t *testing.T, fileName, contents string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.WriteString(fw, contents)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doJSON(t *testing.T, srv *Server, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestUpload(t *testing.T) {
	srv, _ := newTestServer(t)

	body, contentType := multipartBody(t, "hosts.csv", sampleCSV)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/imports", body, contentType)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, resp["id"])
}

func TestUploadMissingFileField(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/imports", &buf, mw.FormDataContentType())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UPL001", resp["code"])
	assert.Contains(t, resp["error"], string(core.UploadErrNoFile))
}

func TestUploadBlockedExtension(t *testing.T) {
	srv, _ := newTestServer(t)

	body, contentType := multipartBody(t, "hosts.exe", sampleCSV)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/imports", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UPL003", resp["code"])
	assert.Contains(t, resp["error"], string(core.UploadErrBadExtension))
}

func TestWizardFlow(t *testing.T) {
	srv, inv := newTestServer(t)

	body, contentType := multipartBody(t, "hosts.csv", sampleCSV)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/imports", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp["id"].(string)

	rec, resp = doJSON(t, srv, http.MethodPost, "/api/imports/"+id+"/validate", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), resp["rowCount"])
	assert.Empty(t, resp["rowErrors"])

	rec, resp = doJSON(t, srv, http.MethodPost, "/api/imports/"+id+"/run", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["cancelled"])
	results := resp["results"].([]any)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.NotEmpty(t, res.(map[string]any)["hostId"])
	}

	assert.Equal(t, 1, inv.GroupCount())

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/imports/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(core.StepImported), resp["step"])
}

func TestValidateReportsRowErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	csv := "NAME;HOST_GROUPS\ngood;Linux\nbad-row\n"
	body, contentType := multipartBody(t, "hosts.csv", csv)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/imports", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp["id"].(string)

	rec, resp = doJSON(t, srv, http.MethodPost, "/api/imports/"+id+"/validate", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), resp["rowCount"])
	rowErrors := resp["rowErrors"].([]any)
	require.Len(t, rowErrors, 1)
	assert.Equal(t, float64(3), rowErrors[0].(map[string]any)["line"])
}

func TestValidateFileError(t *testing.T) {
	srv, _ := newTestServer(t)

	csv := "NAME;DESCRIPTION\nhost-1;no groups column\n"
	body, contentType := multipartBody(t, "hosts.csv", csv)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/imports", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp["id"].(string)

	rec, resp = doJSON(t, srv, http.MethodPost, "/api/imports/"+id+"/validate", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "FILE002", resp["code"])
	assert.Contains(t, resp["error"], "HOST_GROUPS")
}

func TestRunDeadlineExceeded(t *testing.T) {
	srv, inv := newTestServer(t)

	body, contentType := multipartBody(t, "hosts.csv", sampleCSV)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/imports", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp["id"].(string)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/imports/"+id+"/validate", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/imports/"+id+"/run", nil).WithContext(ctx)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var runResp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runResp))
	assert.Equal(t, true, runResp["cancelled"])
	assert.Equal(t, 0, inv.GroupCount())
}

func TestRunBeforeValidate(t *testing.T) {
	srv, _ := newTestServer(t)

	body, contentType := multipartBody(t, "hosts.csv", sampleCSV)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/imports", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp["id"].(string)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/imports/"+id+"/run", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancel(t *testing.T) {
	srv, _ := newTestServer(t)

	body, contentType := multipartBody(t, "hosts.csv", sampleCSV)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/imports", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp["id"].(string)

	rec, _ = doJSON(t, srv, http.MethodDelete, "/api/imports/"+id, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/imports/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(core.StepCancelled), resp["step"])
}

func TestSessionNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/imports/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, resp["message"])
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/imports/nope", nil, "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
