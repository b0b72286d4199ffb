package services

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"regexp"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

var dataURLPattern = regexp.MustCompile(`^data:(image/\w+);base64,(.*)$`)

// ImagePipeline preprocesses receipt images before remote extraction:
// orientation fix, grayscale, 1.5x upscale, contrast normalize, binarize,
// sharpen. Every stage is best-effort; any failure falls back to the
// unprocessed image.
type ImagePipeline struct {
	enabled bool
	log     zerolog.Logger
}

// NewImagePipeline probes the codec support once; when the probe fails the
// pipeline degrades to a passthrough.
func NewImagePipeline(log zerolog.Logger) *ImagePipeline {
	p := &ImagePipeline{log: log}

	probe := imaging.New(2, 2, color.Gray{Y: 128})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, probe, imaging.PNG); err != nil {
		log.Warn().Err(err).Msg("image preprocessing unavailable; using passthrough")
		return p
	}
	if _, err := imaging.Decode(&buf); err != nil {
		log.Warn().Err(err).Msg("image preprocessing unavailable; using passthrough")
		return p
	}
	p.enabled = true
	return p
}

// Prepare decodes a base64 payload or data URL and, when the pipeline is
// enabled, runs the enhancement stages. On any failure it returns the
// original bytes unchanged. A nil payload means the input was not decodable
// at all.
func (p *ImagePipeline) Prepare(imageData string) (payload []byte, mime string) {
	base64Data := imageData
	mime = "image/png"
	if m := dataURLPattern.FindStringSubmatch(imageData); m != nil {
		mime = m[1]
		base64Data = m[2]
	}

	raw, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		p.log.Warn().Err(err).Msg("image payload is not valid base64")
		return nil, ""
	}
	if !p.enabled {
		return raw, mime
	}

	processed, err := p.process(raw)
	if err != nil {
		p.log.Warn().Err(err).Msg("image preprocessing failed; sending original image")
		return raw, mime
	}
	return processed, "image/png"
}

func (p *ImagePipeline) process(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	img = imaging.Grayscale(img)
	width := img.Bounds().Dx()
	if width > 0 {
		img = imaging.Resize(img, width*3/2, 0, imaging.Lanczos)
	}
	img = imaging.AdjustContrast(img, 20)
	img = binarize(img, 150)
	img = imaging.Sharpen(img, 1.0)

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.PNG); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// binarize thresholds a grayscale image to pure black and white to make
// printed text stand out.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R >= threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
		}
		return color.NRGBA{A: c.A}
	})
}
