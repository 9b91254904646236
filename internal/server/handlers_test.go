package server

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agridocs/cloudapi/internal/config"
	"github.com/agridocs/cloudapi/internal/model"
	"github.com/agridocs/cloudapi/internal/service"
	"github.com/agridocs/cloudapi/internal/store"
	"github.com/agridocs/cloudapi/internal/tester"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(apiKey string) *gin.Engine {
	tester.Setup()

	svc := service.NewDocumentService(store.NewGormStore(tester.TestDB()), tester.Cache())
	cnf := &config.Config{APIKey: apiKey, Port: "8080"}

	return New(cnf, svc).Router()
}

func doJSON(router *gin.Engine, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestIngest_FlatShape(t *testing.T) {
	router := setupRouter("")

	w := doJSON(router, "POST", "/ingest", `{
		"contrato_nro": "C1",
		"tipo": "CONTRATO",
		"productor_cuit": "20-12345678-9",
		"content_text": "hola"
	}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, model.AuditStatusOK, body["status"])
	assert.NotEmpty(t, body["doc_id"])
}

func TestIngest_ERPShape(t *testing.T) {
	router := setupRouter("")

	w := doJSON(router, "POST", "/ingest", `{
		"tipo": "REMITO",
		"referencias": {"contrato_nro": "C9", "productor_cuit": "X"},
		"origen": {"hash_sha256": "cafecafe", "sistema": "erp"},
		"datos": {"campo": 1}
	}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, model.AuditStatusOK, body["status"])
}

func TestIngest_DuplicateReturns409(t *testing.T) {
	router := setupRouter("")

	payload := `{"contrato_nro": "C1", "tipo": "CONTRATO"}`

	first := doJSON(router, "POST", "/ingest", payload, nil)
	require.Equal(t, http.StatusOK, first.Code)
	winnerID := decodeBody(t, first)["doc_id"]

	second := doJSON(router, "POST", "/ingest", payload, nil)
	assert.Equal(t, http.StatusConflict, second.Code)

	body := decodeBody(t, second)
	assert.Equal(t, model.AuditStatusDup, body["status"])
	assert.Equal(t, winnerID, body["doc_id"])
	assert.Equal(t, "documento duplicado (hash)", body["error"])

	// the duplicate attempt still left an audit row
	audit := doJSON(router, "GET", "/audit/ingest", "", nil)
	require.Equal(t, http.StatusOK, audit.Code)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(audit.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, model.AuditStatusDup, entries[0]["status"])
	assert.Equal(t, model.AuditStatusOK, entries[1]["status"])
}

func TestIngest_MissingFields(t *testing.T) {
	router := setupRouter("")

	w := doJSON(router, "POST", "/ingest", `{"tipo": "CONTRATO"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBody(t, w)
	assert.Contains(t, body["error"], "contrato_nro")
}

func TestIngest_NonObjectPayload(t *testing.T) {
	router := setupRouter("")

	for _, payload := range []string{`[1,2]`, `"texto"`, `42`} {
		w := doJSON(router, "POST", "/ingest", payload, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	}
}

func TestRecords_PaginationTotal(t *testing.T) {
	router := setupRouter("")

	for _, payload := range []string{
		`{"contrato_nro": "C1", "tipo": "CONTRATO"}`,
		`{"contrato_nro": "C1", "tipo": "ANEXO"}`,
		`{"contrato_nro": "C2", "tipo": "CONTRATO"}`,
	} {
		w := doJSON(router, "POST", "/ingest", payload, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(router, "GET", "/records?limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, float64(1), body["limit"])
	assert.Len(t, body["items"], 1)

	w = doJSON(router, "GET", "/records?contrato_nro=C1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])

	w = doJSON(router, "GET", "/records?contrato_nro=C1&tipo=ANEXO", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])
}

func TestRecords_LimitValidation(t *testing.T) {
	router := setupRouter("")

	for _, target := range []string{
		"/records?limit=0",
		"/records?limit=501",
		"/records?limit=abc",
		"/records?offset=-1",
	} {
		w := doJSON(router, "GET", target, "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, target)
	}
}

func TestExportCSV(t *testing.T) {
	router := setupRouter("")

	for _, payload := range []string{
		`{"contrato_nro": "C1", "tipo": "CONTRATO", "productor_cuit": "X"}`,
		`{"contrato_nro": "C2", "tipo": "ANEXO"}`,
	} {
		w := doJSON(router, "POST", "/ingest", payload, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// a document without hash exports an empty hash field
	st := store.NewGormStore(tester.TestDB())
	require.NoError(t, st.CreateDocument(context.TODO(), &model.Doc{
		ID:          uuid.New().String(),
		ContratoNro: "C3",
		Tipo:        "CONTRATO",
	}))

	w := doJSON(router, "GET", "/records/export.csv", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "records_export.csv")

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	require.Len(t, lines, 4) // header + 3 rows
	assert.Equal(t, "id;contrato_nro;tipo;productor_cuit;hash_sha256;created_at", lines[0])

	for _, line := range lines[1:] {
		assert.Len(t, strings.Split(line, ";"), 6)
	}

	// the hash-less row carries an empty hash column
	var hashless string
	for _, line := range lines[1:] {
		if strings.Contains(line, ";C3;") {
			hashless = line
		}
	}
	require.NotEmpty(t, hashless)
	assert.Equal(t, "", strings.Split(hashless, ";")[4])
}

func TestExportCSV_GzipEncoding(t *testing.T) {
	router := setupRouter("")

	w := doJSON(router, "POST", "/ingest", `{"contrato_nro": "C1", "tipo": "CONTRATO"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/records/export.csv", "", map[string]string{"Accept-Encoding": "gzip"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	gr, err := gzip.NewReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	plain, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(plain), "id;contrato_nro;tipo"))
}

func TestAudit_Limit(t *testing.T) {
	router := setupRouter("")

	for _, payload := range []string{
		`{"contrato_nro": "C1", "tipo": "CONTRATO"}`,
		`{"contrato_nro": "C2", "tipo": "CONTRATO"}`,
	} {
		w := doJSON(router, "POST", "/ingest", payload, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(router, "GET", "/audit/ingest?limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)

	w = doJSON(router, "GET", "/audit/ingest?limit=0", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHealth(t *testing.T) {
	router := setupRouter("")

	w := doJSON(router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestHealthFull(t *testing.T) {
	router := setupRouter("")

	w := doJSON(router, "POST", "/ingest", `{"contrato_nro": "C1", "tipo": "CONTRATO"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/health/full", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["docs_count"])
	assert.Len(t, body["last_audit"], 1)
}

func TestAPIKeyAuth(t *testing.T) {
	router := setupRouter("sekret")

	// non-health endpoints require the header
	w := doJSON(router, "GET", "/records", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/ingest", `{"contrato_nro": "C1", "tipo": "T"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "GET", "/records", "", map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "GET", "/records", "", map[string]string{"X-API-Key": "sekret"})
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays open
	w = doJSON(router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuth_DisabledWhenUnset(t *testing.T) {
	router := setupRouter("")

	w := doJSON(router, "GET", "/records", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
