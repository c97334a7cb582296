// Package api exposes the record repository over JSON HTTP. Handlers are
// stateless: they validate request shape, delegate, and shape the response.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"timesheet/internal/records"
)

// Repository is the slice of record operations the handlers need.
type Repository interface {
	List(ctx context.Context) (records.ListResult, error)
	Create(ctx context.Context, date, hours, content string) (string, error)
	Update(ctx context.Context, rowIndex int, day, hours, content string) error
	PatchCell(ctx context.Context, rowIndex int, column, value string) error
	Delete(ctx context.Context, rowIndex int) error
}

// Notifier is pinged after a record is created. Implementations must never
// fail the request.
type Notifier interface {
	NotifyRecordCreated(ctx context.Context, date, hours, content string)
}

type Handler struct {
	repo     Repository
	notifier Notifier
}

func NewHandler(repo Repository, notifier Notifier) *Handler {
	return &Handler{repo: repo, notifier: notifier}
}

// RegisterRoutes attaches the API endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/submit", h.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/api/records", h.handleListRecords).Methods(http.MethodGet)
	r.HandleFunc("/api/records/{rowIndex}", h.handleUpdateRecord).Methods(http.MethodPut)
	r.HandleFunc("/api/records/{rowIndex}", h.handlePatchRecord).Methods(http.MethodPatch)
	r.HandleFunc("/api/records/{rowIndex}", h.handleDeleteRecord).Methods(http.MethodDelete)
}

type submitRequest struct {
	Date    string `json:"date"`
	Hours   string `json:"hours"`
	Content string `json:"content"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "すべてのフィールドを入力してください。")
		return
	}

	message, err := h.repo.Create(r.Context(), req.Date, req.Hours, req.Content)
	if err != nil {
		writeError(w, err, "スプレッドシートへの書き込み中にエラーが発生しました。")
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyRecordCreated(r.Context(), req.Date, req.Hours, req.Content)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
	})
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	result, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, err, "スプレッドシートの取得中にエラーが発生しました。")
		return
	}

	// records is always an array on the wire, even when empty.
	recs := result.Records
	if recs == nil {
		recs = []records.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"records":    recs,
		"totalHours": result.TotalHours,
	})
}

type updateRequest struct {
	Day     string `json:"day"`
	Hours   string `json:"hours"`
	Content string `json:"content"`
}

func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	rowIndex, ok := rowIndexVar(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "リクエストボディが不正です。")
		return
	}

	if err := h.repo.Update(r.Context(), rowIndex, req.Day, req.Hours, req.Content); err != nil {
		writeError(w, err, "更新中にエラーが発生しました。")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type patchRequest struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (h *Handler) handlePatchRecord(w http.ResponseWriter, r *http.Request) {
	rowIndex, ok := rowIndexVar(w, r)
	if !ok {
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "リクエストボディが不正です。")
		return
	}
	if req.Column == "" {
		badRequest(w, "column を指定してください。（day|hours|content または A|B|C）")
		return
	}

	if err := h.repo.PatchCell(r.Context(), rowIndex, req.Column, req.Value); err != nil {
		writeError(w, err, "セル更新中にエラーが発生しました。")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	rowIndex, ok := rowIndexVar(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), rowIndex); err != nil {
		writeError(w, err, "削除中にエラーが発生しました。")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// rowIndexVar parses the {rowIndex} path variable. Positivity is the
// repository's concern; the handler only rejects non-numeric values.
func rowIndexVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := mux.Vars(r)["rowIndex"]
	rowIndex, err := strconv.Atoi(raw)
	if err != nil {
		log.Debug().Str("rowIndex", raw).Msg("Rejecting non-numeric rowIndex")
		badRequest(w, "rowIndex が不正です。")
		return 0, false
	}
	return rowIndex, true
}
