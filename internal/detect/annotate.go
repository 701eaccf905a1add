package detect

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

const boxThickness = 2

// Annotate draws each detection's bounding box and a "name confidence"
// label onto the image and re-encodes it in the source format (png or
// jpeg).
func Annotate(imageData []byte, detections []Detection) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Src)

	for _, det := range detections {
		rect := clampRect(det.Box, bounds)
		drawRect(canvas, rect)
		label := fmt.Sprintf("%s %.2f", det.ClassName, det.Confidence)
		drawLabel(canvas, label, rect.Min.X, rect.Min.Y-4)
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, canvas)
	default:
		err = jpeg.Encode(&buf, canvas, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode annotated image: %w", err)
	}
	return buf.Bytes(), nil
}

func clampRect(box Box, bounds image.Rectangle) image.Rectangle {
	rect := image.Rect(int(box.X1), int(box.Y1), int(box.X2), int(box.Y2))
	return rect.Intersect(bounds)
}

func drawRect(img *image.RGBA, rect image.Rectangle) {
	for t := 0; t < boxThickness; t++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.Set(x, rect.Min.Y+t, boxColor)
			img.Set(x, rect.Max.Y-1-t, boxColor)
		}
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			img.Set(rect.Min.X+t, y, boxColor)
			img.Set(rect.Max.X-1-t, y, boxColor)
		}
	}
}

func drawLabel(img *image.RGBA, label string, x, y int) {
	if y < basicfont.Face7x13.Ascent {
		y = basicfont.Face7x13.Ascent
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(boxColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(label)
}
