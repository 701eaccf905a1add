package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/atmello/partscan/internal/detect"
	"github.com/atmello/partscan/internal/models"
)

// Runs one detection against a local image file and writes the annotated
// copy next to it. Useful for trying out the inference service without the
// web server.
func main() {
	detectorURL := flag.String("url", "http://127.0.0.1:8000", "inference service URL")
	confidence := flag.Float64("conf", 0.25, "confidence threshold")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		log.Fatal("Failed to read image:", err)
	}

	detector := detect.NewRemoteDetector(*detectorURL, *confidence)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	detections, err := detector.Detect(ctx, imageData)
	if err != nil {
		log.Fatal("Detection failed:", err)
	}
	if len(detections) == 0 {
		fmt.Println("No detections")
		return
	}

	for _, det := range detections {
		fmt.Printf("%-30s %.2f  (%.0f,%.0f)-(%.0f,%.0f)\n",
			models.NormalizePartName(det.ClassName), det.Confidence,
			det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2)
	}

	best := detect.Best(detections)
	fmt.Printf("Best: %s (%.2f)\n", models.NormalizePartName(best.ClassName), best.Confidence)

	annotated, err := detect.Annotate(imageData, detections)
	if err != nil {
		log.Fatal("Annotation failed:", err)
	}

	outPath := filepath.Join(filepath.Dir(imagePath), "processed_"+filepath.Base(imagePath))
	if err := os.WriteFile(outPath, annotated, 0644); err != nil {
		log.Fatal("Failed to write annotated image:", err)
	}
	fmt.Println("Annotated image written to", outPath)
}
