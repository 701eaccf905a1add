package detect

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// RemoteDetector calls an external inference service over HTTP. The service
// owns the model weights; this side only ships the image and the fixed
// confidence threshold. Inference runs on CPU.
type RemoteDetector struct {
	client     *resty.Client
	confidence float64
}

func NewRemoteDetector(baseURL string, confidence float64) *RemoteDetector {
	return &RemoteDetector{
		client:     resty.New().SetBaseURL(baseURL),
		confidence: confidence,
	}
}

func (d *RemoteDetector) Detect(ctx context.Context, image []byte) ([]Detection, error) {
	var result struct {
		Detections []Detection `json:"detections"`
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetFileReader("file", "image.jpg", bytes.NewReader(image)).
		SetFormData(map[string]string{
			"conf":   strconv.FormatFloat(d.confidence, 'f', -1, 64),
			"device": "cpu",
		}).
		SetResult(&result).
		Post("/detect")
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("inference failed with status %d", resp.StatusCode())
	}

	return result.Detections, nil
}

// Ping checks that the inference service is reachable and healthy.
func (d *RemoteDetector) Ping(ctx context.Context) error {
	resp, err := d.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("inference service unreachable: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode())
	}
	return nil
}
