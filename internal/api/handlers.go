package api

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atmello/partscan/internal/database"
	"github.com/atmello/partscan/internal/detect"
	"github.com/atmello/partscan/internal/models"
	"github.com/atmello/partscan/internal/storage"
)

// App carries the shared process state into the handlers: the stores, the
// detector handle and the logger are constructed once at startup.
type App struct {
	Storage       *storage.LocalStorage
	History       *database.HistoryRepository
	Parts         *database.PartRepository
	Detector      detect.Detector
	MaxUploadSize int64
	TemplatesDir  string
	Log           *zap.Logger
}

func (app *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Log.Error("failed to encode response", zap.Error(err))
	}
}

func (app *App) writeError(w http.ResponseWriter, status int, message string) {
	app.writeJSON(w, status, map[string]string{"error": message})
}

func (app *App) renderTemplate(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(app.TemplatesDir, name))
	if err != nil {
		app.Log.Error("failed to load template", zap.String("template", name), zap.Error(err))
		http.Error(w, "Error loading template", http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		app.Log.Error("failed to render template", zap.String("template", name), zap.Error(err))
	}
}

func (app *App) IndexHandler(w http.ResponseWriter, r *http.Request) {
	records, err := app.History.List(r.Context())
	if err != nil {
		app.Log.Error("failed to list history", zap.Error(err))
		http.Error(w, "Error loading history", http.StatusInternalServerError)
		return
	}

	parts, err := app.Parts.List(r.Context())
	if err != nil {
		app.Log.Error("failed to list parts", zap.Error(err))
		http.Error(w, "Error loading parts", http.StatusInternalServerError)
		return
	}

	app.renderTemplate(w, "index.html", struct {
		Records []models.ImageRecord
		Parts   []models.Part
	}{records, parts})
}

func (app *App) ImageDetailsHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := app.History.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		app.Log.Error("failed to get image record", zap.String("id", id), zap.Error(err))
		http.Error(w, "Error loading image record", http.StatusInternalServerError)
		return
	}

	parts, err := app.Parts.List(r.Context())
	if err != nil {
		app.Log.Error("failed to list parts", zap.Error(err))
		http.Error(w, "Error loading parts", http.StatusInternalServerError)
		return
	}

	app.renderTemplate(w, "image_details.html", struct {
		Image *models.ImageRecord
		Parts []models.Part
	}{record, parts})
}

// DeleteImageHandler removes both backing files best-effort, then the
// record unconditionally. Database consistency takes priority over
// filesystem consistency: file-deletion failures are logged, never
// propagated.
func (app *App) DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := app.History.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		app.Log.Error("failed to get image record", zap.String("id", id), zap.Error(err))
		http.Error(w, "Error loading image record", http.StatusInternalServerError)
		return
	}

	for _, rel := range []string{record.OriginalImagePath, record.ProcessedImagePath} {
		if err := app.Storage.Remove(rel); err != nil && !os.IsNotExist(err) {
			app.Log.Warn("failed to delete image file", zap.String("path", rel), zap.Error(err))
		}
	}

	if err := app.History.Delete(r.Context(), id); err != nil && !errors.Is(err, database.ErrNotFound) {
		app.Log.Error("failed to delete image record", zap.String("id", id), zap.Error(err))
		http.Error(w, "Error deleting image record", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// UpdatePartHandler overwrites a part's quantity, last write wins. A form
// submission (Referer present) is redirected back; a programmatic call gets
// a JSON confirmation.
func (app *App) UpdatePartHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	part, err := app.Parts.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		app.writeError(w, http.StatusNotFound, "Part not found")
		return
	}
	if err != nil {
		app.Log.Error("failed to get part", zap.String("id", id), zap.Error(err))
		app.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	raw := r.FormValue("quantity")
	if raw == "" {
		app.writeError(w, http.StatusBadRequest, "Quantity not provided")
		return
	}

	quantity, err := strconv.Atoi(raw)
	if err != nil || quantity < 0 {
		app.writeError(w, http.StatusBadRequest, "Invalid quantity")
		return
	}

	if err := app.Parts.SetQuantity(r.Context(), part.ID, quantity); err != nil {
		app.Log.Error("failed to update part quantity", zap.String("id", id), zap.Error(err))
		app.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if ref := r.Referer(); ref != "" {
		http.Redirect(w, r, ref, http.StatusFound)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"part": map[string]any{
			"id":       part.ID,
			"name":     part.Name,
			"quantity": quantity,
		},
	})
}
