package content

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// fakeDecoder returns fixed results so the dimension checks can be
// probed without crafting real image payloads.
type fakeDecoder struct {
	pix    []byte
	width  int
	height int
	err    error
}

func (d *fakeDecoder) DecodeRGBA([]byte) ([]byte, int, int, error) {
	return d.pix, d.width, d.height, d.err
}

func TestDecodeTextPassthrough(t *testing.T) {
	for _, payload := range [][]byte{[]byte("hello"), []byte(""), {0xff, 0xfe, 0x00}} {
		dec, err := Decode(TextPlainUTF8, payload)
		if err != nil {
			t.Fatalf("Decode(text, %q): %v", payload, err)
		}
		text, ok := dec.(Text)
		if !ok {
			t.Fatalf("Decode(text) = %T, want Text", dec)
		}
		if !bytes.Equal(text, payload) {
			t.Fatalf("Decode(text) = %q, want %q", text, payload)
		}
	}
}

func TestDecodeImageDimensions(t *testing.T) {
	tests := []struct {
		name    string
		dec     fakeDecoder
		wantErr error
		wantH   int
	}{
		{
			name:  "16 bytes at width 2 is 2 rows",
			dec:   fakeDecoder{pix: make([]byte, 16), width: 2, height: 2},
			wantH: 2,
		},
		{
			name:    "15 bytes at width 2 is not a whole row",
			dec:     fakeDecoder{pix: make([]byte, 15), width: 2, height: 2},
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "negative width rejected even on success",
			dec:     fakeDecoder{pix: make([]byte, 16), width: -2, height: 2},
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "negative height rejected even on success",
			dec:     fakeDecoder{pix: make([]byte, 16), width: 2, height: -2},
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "buffer size must match width*height*4",
			dec:     fakeDecoder{pix: make([]byte, 16), width: 2, height: 3},
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "decoder failure",
			dec:     fakeDecoder{err: errors.New("bad magic")},
			wantErr: ErrDecode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := DecodeUsing(&tt.dec, ImagePNG, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			img := dec.(Image)
			if img.Height() != tt.wantH {
				t.Fatalf("Height() = %d, want %d", img.Height(), tt.wantH)
			}
		})
	}
}

func TestDecodeImageCopiesPixels(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	fd := &fakeDecoder{pix: src, width: 1, height: 2}
	dec, err := DecodeUsing(fd, ImagePNG, nil)
	if err != nil {
		t.Fatal(err)
	}
	img := dec.(Image)
	src[0] = 0xaa // decoder reuses its buffer; ours must not change
	if img.Pix[0] != 1 {
		t.Fatal("decoded pixels alias the decoder's buffer")
	}
}

func TestDecodePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(2, 1, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	dec, err := Decode(ImagePNG, buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	img, ok := dec.(Image)
	if !ok {
		t.Fatalf("Decode(png) = %T, want Image", dec)
	}
	if img.Width != 3 || img.Height() != 2 {
		t.Fatalf("got %dx%d, want 3x2", img.Width, img.Height())
	}
	if len(img.Pix) != 3*2*4 {
		t.Fatalf("len(Pix) = %d, want %d", len(img.Pix), 3*2*4)
	}
	if img.Pix[0] != 255 || img.Pix[3] != 255 {
		t.Fatalf("pixel (0,0) = %v, want red", img.Pix[0:4])
	}
}

func TestDecodePNGMalformed(t *testing.T) {
	_, err := Decode(ImagePNG, []byte("definitely not a png"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}
