package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/internal/domain/partition"
	"github.com/okian/leadsplit/internal/domain/tabular"
	"github.com/okian/leadsplit/internal/domain/types"
)

const (
	uploadField        = "file"
	invalidFileMessage = "Invalid file type. Allowed: csv, xlsx, xls"
	exportHeader       = "First Name,Phone,Notes"
)

// ListsHandler serves upload, the per-agent view and the CSV export.
type ListsHandler struct {
	deps     ListDependencies
	maxBytes int64
}

// NewListsHandler creates a new lists handler accepting uploads up to maxBytes.
func NewListsHandler(deps ListDependencies, maxBytes int64) *ListsHandler {
	return &ListsHandler{deps: deps, maxBytes: maxBytes}
}

// HandleUpload handles POST /api/lists/upload with a multipart "file" part.
// The part is held in memory; nothing touches disk.
func (h *ListsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload_list"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if r.ContentLength > h.maxBytes {
		fail(w, r, op, NewKind(op, ErrTooLarge))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(w, r, op, NewKind(op, ErrTooLarge))
			return
		}
		fail(w, r, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		fail(w, r, op, NewKind(op, ErrNoFile))
		return
	}
	defer file.Close()

	if !tabular.IsSupported(filepath.Ext(header.Filename)) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_file_type", Message: invalidFileMessage})
		return
	}

	res, err := h.deps.Upload(r.Context(), file, header.Filename)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.UploadResponse{
		Message:  fmt.Sprintf("Distributed %d items among %d agents", res.Total, partition.PoolSize),
		Counts:   res.Counts,
		Total:    res.Total,
		Rejected: res.Rejected,
	})
}

// HandleListDistribution handles GET /api/lists.
func (h *ListsHandler) HandleListDistribution(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_distribution"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	views, err := h.deps.ListDistribution(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromDistribution(views))
}

// HandleExport handles GET /api/lists/export?agent_id=ID and streams the
// agent's items as a CSV attachment.
func (h *ListsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_list"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.ExportAgent(r.Context(), r.URL.Query().Get("agent_id"))
	if err != nil {
		fail(w, r, op, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(view.Agent.Name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(renderCSV(view.Items)))
}

// exportFilename replaces whitespace runs in name with underscores.
func exportFilename(name string) string {
	return strings.Join(strings.Fields(name), "_") + "_assigned_list.csv"
}

// renderCSV writes items with every field quoted, one row per line.
func renderCSV(items []model.Item) string {
	var b strings.Builder
	b.WriteString(exportHeader)
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString(quote(it.FirstName))
		b.WriteByte(',')
		b.WriteString(quote(it.Phone))
		b.WriteByte(',')
		b.WriteString(quote(it.Notes))
		b.WriteString("\n")
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
