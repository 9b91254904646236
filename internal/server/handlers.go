package server

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agridocs/cloudapi/internal/compress"
	"github.com/agridocs/cloudapi/internal/model"
	"github.com/agridocs/cloudapi/internal/service"
	"github.com/agridocs/cloudapi/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type handler struct {
	svc *service.DocumentService
}

func newHandler(svc *service.DocumentService) *handler {
	return &handler{svc: svc}
}

// Ingest accepts a document in either the flat or the nested/ERP shape.
// Duplicates are reported with 409 after their DUP audit row is written.
func (h *handler) Ingest(c *gin.Context) {
	var payload interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": service.ErrInvalidPayload.Error()})
		return
	}

	rec, err := service.Normalize(payload)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	raw, _ := payload.(map[string]interface{})

	logrus.Infof("ingest: contrato_nro=%s tipo=%s", rec.ContratoNro, rec.Tipo)

	doc, status, err := h.svc.Ingest(c.Request.Context(), rec, raw)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateDocument) {
			body := gin.H{"error": err.Error(), "status": model.AuditStatusDup}
			if doc != nil {
				body["doc_id"] = doc.ID
			}
			c.JSON(http.StatusConflict, body)
			return
		}

		logrus.Errorf("ingest failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "doc_id": doc.ID, "status": status})
}

// Records returns one page of documents plus the pre-pagination match count.
func (h *handler) Records(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 50, 1, 500)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0, 0, 0)
	if !ok {
		return
	}

	docs, total, err := h.svc.ListDocuments(c.Request.Context(), docFilter(c), limit, offset)
	if err != nil {
		logrus.Errorf("records query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  docs,
		"limit":  limit,
		"offset": offset,
		"count":  total,
	})
}

// ExportCSV streams the matching documents as a semicolon-delimited CSV
// download, content-encoded when the client accepts gzip or brotli.
func (h *handler) ExportCSV(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 5000, 1, 100000)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0, 0, 0)
	if !ok {
		return
	}

	docs, _, err := h.svc.ListDocuments(c.Request.Context(), docFilter(c), limit, offset)
	if err != nil {
		logrus.Errorf("csv export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	_ = w.Write([]string{"id", "contrato_nro", "tipo", "productor_cuit", "hash_sha256", "created_at"})
	for _, doc := range docs {
		_ = w.Write([]string{
			doc.ID,
			doc.ContratoNro,
			doc.Tipo,
			stringOrEmpty(doc.ProductorCUIT),
			stringOrEmpty(doc.HashSHA256),
			doc.CreatedAt.Format(time.RFC3339),
		})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		logrus.Errorf("csv export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	codec, encoding := negotiateEncoding(c.GetHeader("Accept-Encoding"))
	data, err := codec.Encode(buf.Bytes())
	if err != nil {
		logrus.Errorf("csv export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if encoding != "" {
		c.Header("Content-Encoding", encoding)
	}
	c.Header("Content-Disposition", "attachment; filename=records_export.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Audit returns the most recent ingestion audit rows, newest first.
func (h *handler) Audit(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 100, 1, 0)
	if !ok {
		return
	}

	audits, err := h.svc.ListAudits(c.Request.Context(), limit)
	if err != nil {
		logrus.Errorf("audit query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, audits)
}

func (h *handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) HealthFull(c *gin.Context) {
	count, err := h.svc.CountDocuments(c.Request.Context())
	if err != nil {
		logrus.Errorf("health check failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	audits, err := h.svc.ListAudits(c.Request.Context(), 5)
	if err != nil {
		logrus.Errorf("health check failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"docs_count": count,
		"last_audit": audits,
	})
}

func docFilter(c *gin.Context) store.DocFilter {
	return store.DocFilter{
		ContratoNro:   c.Query("contrato_nro"),
		Tipo:          c.Query("tipo"),
		ProductorCUIT: c.Query("productor_cuit"),
	}
}

// queryInt parses an integer query parameter with a default and bounds. A max
// of 0 means unbounded. On a violation it writes the 422 response and returns
// ok=false.
func queryInt(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < min || (max > 0 && value > max) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fmt.Sprintf("parámetro %s inválido o fuera de rango", name),
		})
		return 0, false
	}

	return value, true
}

func negotiateEncoding(acceptEncoding string) (compress.Compress, string) {
	for _, part := range strings.Split(acceptEncoding, ",") {
		switch strings.TrimSpace(part) {
		case "br":
			return compress.NewBrotli(), "br"
		case "gzip":
			return compress.NewGZip(), "gzip"
		}
	}

	return compress.NewNop(), ""
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
