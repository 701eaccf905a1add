package detect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteDetector_Detect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
		}
		if got := r.FormValue("conf"); got != "0.25" {
			t.Errorf("Expected conf=0.25, got %q", got)
		}
		if got := r.FormValue("device"); got != "cpu" {
			t.Errorf("Expected device=cpu, got %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("Missing file field: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detections":[{"class_name":"Junta Cria","confidence":0.91,"box":{"x1":1,"y1":2,"x2":3,"y2":4}}]}`))
	}))
	defer server.Close()

	detector := NewRemoteDetector(server.URL, 0.25)
	detections, err := detector.Detect(context.Background(), []byte("image bytes"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	if detections[0].ClassName != "Junta Cria" || detections[0].Confidence != 0.91 {
		t.Errorf("Unexpected detection: %+v", detections[0])
	}
	if detections[0].Box.X2 != 3 {
		t.Errorf("Unexpected box: %+v", detections[0].Box)
	}
}

func TestRemoteDetector_DetectServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	detector := NewRemoteDetector(server.URL, 0.25)
	if _, err := detector.Detect(context.Background(), []byte("image bytes")); err == nil {
		t.Error("Expected error for 500 response, got nil")
	}
}

func TestRemoteDetector_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	detector := NewRemoteDetector(server.URL, 0.25)
	if err := detector.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
