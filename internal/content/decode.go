package content

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

var (
	// ErrDecode reports a payload the image decoder could not parse.
	ErrDecode = errors.New("content: decode failed")
	// ErrInvalidDimensions reports a decoder result whose dimensions and
	// pixel buffer do not agree (or are negative).
	ErrInvalidDimensions = errors.New("content: invalid image dimensions")
)

// Decoded is the in-memory form of one piece of clipboard content:
// either Text or Image.
type Decoded interface {
	decoded()
}

// Text is a text payload, returned exactly as transferred. A declared
// utf-8 charset is not validated; ill-formed sequences pass through.
type Text []byte

// Image is a decoded raster: tightly packed RGBA rows, 4 bytes per
// pixel, stride Width*4.
type Image struct {
	Pix   []byte
	Width int
}

func (Text) decoded()  {}
func (Image) decoded() {}

// Height derives the row count from the buffer size and width.
func (im Image) Height() int {
	if im.Width <= 0 {
		return 0
	}
	return len(im.Pix) / (im.Width * 4)
}

// ImageDecoder turns a compressed image payload into RGBA pixels.
// Implementations report width and height as signed values; Decode
// rejects negatives even when err is nil.
type ImageDecoder interface {
	DecodeRGBA(data []byte) (pix []byte, width, height int, err error)
}

// Decode converts a transferred payload of the given kind using the
// built-in PNG decoder for image kinds.
func Decode(kind Kind, raw []byte) (Decoded, error) {
	return DecodeUsing(PNGDecoder{}, kind, raw)
}

// DecodeUsing is Decode with an explicit image decoder.
func DecodeUsing(dec ImageDecoder, kind Kind, raw []byte) (Decoded, error) {
	switch kind.(type) {
	case TextKind:
		return Text(raw), nil
	case ImageKind:
		return decodeImage(dec, raw)
	default:
		return nil, fmt.Errorf("content: unhandled kind %q", kind.Mime())
	}
}

func decodeImage(dec ImageDecoder, raw []byte) (Decoded, error) {
	pix, width, height, err := dec.DecodeRGBA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > 0 && len(pix)%(width*4) != 0 {
		return nil, fmt.Errorf("%w: %d pixel bytes not a multiple of stride %d", ErrInvalidDimensions, len(pix), width*4)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: %d pixel bytes for %dx%d", ErrInvalidDimensions, len(pix), width, height)
	}
	// Copy out of the decoder-owned buffer.
	out := make([]byte, len(pix))
	copy(out, pix)
	return Image{Pix: out, Width: width}, nil
}

// PNGDecoder decodes PNG, the one still-image format wlgrab supports,
// into tightly packed RGBA.
type PNGDecoder struct{}

func (PNGDecoder) DecodeRGBA(data []byte) ([]byte, int, int, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba.Pix, b.Dx(), b.Dy(), nil
}
