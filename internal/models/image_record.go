package models

import (
	"time"

	"github.com/google/uuid"
)

// ImageRecord is one persisted upload-and-detect event. The two paths are
// stored relative to the data dir, always with forward slashes.
type ImageRecord struct {
	ID                 string
	OriginalImagePath  string
	ProcessedImagePath string
	Timestamp          time.Time
	DetectionResults   *string
	Filename           string
}

func NewImageRecord(originalPath, processedPath, filename string, detectionResults *string) *ImageRecord {
	return &ImageRecord{
		ID:                 uuid.New().String(),
		OriginalImagePath:  originalPath,
		ProcessedImagePath: processedPath,
		Timestamp:          time.Now(),
		DetectionResults:   detectionResults,
		Filename:           filename,
	}
}
