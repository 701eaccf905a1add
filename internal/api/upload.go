package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atmello/partscan/internal/detect"
	"github.com/atmello/partscan/internal/models"
	"github.com/atmello/partscan/internal/storage"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

type partSnapshot struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	InStock  bool   `json:"in_stock"`
}

type uploadResponse struct {
	ResultImage   string        `json:"result_image"`
	DetectedPiece string        `json:"detected_piece"`
	Confidence    float64       `json:"confidence"`
	Part          *partSnapshot `json:"part"`
}

// UploadHandler runs the full workflow: validate, save the original, run
// detection, save the annotated copy, upsert the inventory part, insert the
// history record. Once the original is on disk, every failure path removes
// it again before the error response; the deferred cleanup also covers
// panics.
func (app *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)
	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		app.writeError(w, http.StatusBadRequest, "File too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "No photo uploaded")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		app.writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		app.writeError(w, http.StatusBadRequest, "File type not allowed")
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	filename := storage.UploadFilename(header.Filename, time.Now())
	originalPath, err := app.Storage.SaveUpload(bytes.NewReader(imageData), filename)
	if err != nil {
		app.Log.Error("failed to save upload", zap.String("filename", filename), zap.Error(err))
		app.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	app.Log.Info("upload saved", zap.String("path", originalPath))

	// The upload must be gone again before any error response goes out.
	// Failure paths call removeUpload directly; the defer only catches
	// panics further down the workflow.
	removed := false
	removeUpload := func() {
		if removed {
			return
		}
		removed = true
		if err := app.Storage.Remove(originalPath); err != nil {
			app.Log.Error("failed to clean up upload", zap.String("path", originalPath), zap.Error(err))
		} else {
			app.Log.Warn("upload removed after failed processing", zap.String("path", originalPath))
		}
	}
	committed := false
	defer func() {
		if !committed {
			removeUpload()
		}
	}()

	detections, err := app.Detector.Detect(r.Context(), imageData)
	if err != nil {
		app.Log.Error("detection failed", zap.String("path", originalPath), zap.Error(err))
		removeUpload()
		app.writeError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}
	if len(detections) == 0 {
		app.Log.Warn("detector returned no results", zap.String("path", originalPath))
		removeUpload()
		app.writeError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}

	annotated, err := detect.Annotate(imageData, detections)
	if err != nil {
		app.Log.Error("annotation failed", zap.String("path", originalPath), zap.Error(err))
		removeUpload()
		app.writeError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}

	processedName := "processed_" + filename
	processedPath, err := app.Storage.SaveResult(processedName, annotated)
	if err != nil {
		app.Log.Error("failed to save annotated image", zap.String("filename", processedName), zap.Error(err))
		removeUpload()
		app.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	best := detect.Best(detections)
	detectedPiece := models.NormalizePartName(best.ClassName)

	// The part row is created lazily with quantity 0; detection events
	// never change stock.
	if _, err := app.Parts.EnsurePart(r.Context(), detectedPiece); err != nil {
		app.Log.Error("failed to upsert part", zap.String("name", detectedPiece), zap.Error(err))
		removeUpload()
		app.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	payload, err := json.Marshal(detections)
	if err != nil {
		app.Log.Error("failed to serialize detections", zap.Error(err))
		removeUpload()
		app.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	payloadStr := string(payload)

	record := models.NewImageRecord(originalPath, processedPath, filename, &payloadStr)
	if err := app.History.Insert(r.Context(), record); err != nil {
		app.Log.Error("failed to insert history record", zap.Error(err))
		removeUpload()
		app.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var part *partSnapshot
	if stored, err := app.Parts.GetByName(r.Context(), detectedPiece); err != nil {
		app.Log.Warn("failed to load part snapshot", zap.String("name", detectedPiece), zap.Error(err))
	} else {
		part = &partSnapshot{Name: stored.Name, Quantity: stored.Quantity, InStock: stored.InStock()}
	}

	committed = true
	app.writeJSON(w, http.StatusOK, uploadResponse{
		ResultImage:   "/static/results/" + processedName,
		DetectedPiece: detectedPiece,
		Confidence:    best.Confidence,
		Part:          part,
	})
}
