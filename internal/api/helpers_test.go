package api

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/atmello/partscan/internal/database"
	"github.com/atmello/partscan/internal/detect"
	"github.com/atmello/partscan/internal/storage"
)

type fakeDetector struct {
	detections []detect.Detection
	err        error
}

func (f *fakeDetector) Detect(ctx context.Context, image []byte) ([]detect.Detection, error) {
	return f.detections, f.err
}

type testEnv struct {
	app      *App
	router   http.Handler
	detector *fakeDetector
	dataDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dataDir := t.TempDir()
	localStorage, err := storage.NewLocalStorage(dataDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	templatesDir := t.TempDir()
	templates := map[string]string{
		"index.html":         `<html><body>{{len .Records}} records, {{len .Parts}} parts</body></html>`,
		"image_details.html": `<html><body>{{.Image.ID}}{{range .Parts}} {{.Name}}={{.Quantity}}{{end}}</body></html>`,
	}
	for name, content := range templates {
		if err := os.WriteFile(filepath.Join(templatesDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write template: %v", err)
		}
	}

	detector := &fakeDetector{}
	app := &App{
		Storage:       localStorage,
		History:       database.NewHistoryRepository(db),
		Parts:         database.NewPartRepository(db),
		Detector:      detector,
		MaxUploadSize: 16 * 1024 * 1024,
		TemplatesDir:  templatesDir,
		Log:           zap.NewNop(),
	}

	return &testEnv{
		app:      app,
		router:   NewRouter(app),
		detector: detector,
		dataDir:  dataDir,
	}
}

func (env *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) dirEntries(t *testing.T, subdir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(env.dataDir, "static", subdir))
	if err != nil {
		t.Fatalf("Failed to read %s dir: %v", subdir, err)
	}
	return entries
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
