// Package detect wraps the external object-detection model service and the
// annotation of its results onto the source image.
package detect

import "context"

// Box is a bounding box in pixel coordinates, x1/y1 top-left, x2/y2
// bottom-right.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Detection is one predicted object instance.
type Detection struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Detector maps an image to zero or more detections. Implementations must
// be safe for concurrent use; the server shares one instance across all
// requests.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Detection, error)
}

// Best returns the highest-confidence detection. On an exact confidence tie
// the first encountered detection wins; the scan is stable so repeated calls
// pick the same one. Returns nil for an empty slice.
func Best(detections []Detection) *Detection {
	var best *Detection
	for i := range detections {
		if best == nil || detections[i].Confidence > best.Confidence {
			best = &detections[i]
		}
	}
	return best
}
