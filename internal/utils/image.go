package utils

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/nfnt/resize"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func GetImageDimensions(r io.Reader) (*ImageDimensions, error) {
	config, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, err
	}

	return &ImageDimensions{
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// FitImage downscales data so its width does not exceed maxWidth, keeping
// the aspect ratio. Images already within bounds, and formats that cannot be
// re-encoded, are returned unchanged.
func FitImage(data []byte, maxWidth uint) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrUnsupportedImage
	}

	if maxWidth == 0 || uint(img.Bounds().Dx()) <= maxWidth || format == "gif" {
		return data, format, nil
	}

	resized := resize.Resize(maxWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := EncodeImage(resized, format, &buf, 85); err != nil {
		return data, format, nil
	}

	return buf.Bytes(), format, nil
}

func EncodeImage(img image.Image, format string, writer io.Writer, quality int) error {
	switch format {
	case "jpg", "jpeg":
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(writer, img)
	case "gif":
		return gif.Encode(writer, img, nil)
	default:
		return ErrUnsupportedImage
	}
}
