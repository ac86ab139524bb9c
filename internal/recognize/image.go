// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recognize

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/pdiddy/latex-ocr/pkg/types"
)

const mimePNG = "image/png"

// Image is a decoded formula image ready to hand to a backend.
type Image struct {
	// Path is the image path as discovered.
	Path string

	// Stem is the filename without its extension.
	Stem string

	// PNG holds the encoded bytes sent to the backend. When preprocessing is
	// enabled these are the re-encoded, processed pixels.
	PNG []byte

	// Digest is the hex SHA-256 of the original file contents.
	Digest string

	// Width and Height are the dimensions of the image sent to the backend.
	Width, Height int
}

// Stem returns the filename of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads and decodes the image at path. The file must be a PNG by
// content, not just by name. Preprocessing is applied when configured.
func Load(path string, pre types.PreprocessConfig) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("reading image %s: %w", path, err)
	}

	if mt := mimetype.Detect(data); !mt.Is(mimePNG) {
		return Image{}, fmt.Errorf("%s is not a PNG image (detected %s)", path, mt.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decoding image %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	out := Image{
		Path:   path,
		Stem:   Stem(path),
		PNG:    data,
		Digest: hex.EncodeToString(sum[:]),
	}

	if pre.Enabled() {
		img = preprocess(img, pre)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return Image{}, fmt.Errorf("encoding preprocessed image %s: %w", path, err)
		}
		out.PNG = buf.Bytes()
	}

	b := img.Bounds()
	out.Width, out.Height = b.Dx(), b.Dy()
	return out, nil
}

// preprocess converts img to grayscale and shrinks it to the configured
// bounds. Images are never enlarged.
func preprocess(img image.Image, pre types.PreprocessConfig) image.Image {
	if pre.Grayscale {
		img = imaging.Grayscale(img)
	}
	if pre.MaxWidth > 0 && img.Bounds().Dx() > pre.MaxWidth {
		img = imaging.Resize(img, pre.MaxWidth, 0, imaging.Lanczos)
	}
	if pre.MaxHeight > 0 && img.Bounds().Dy() > pre.MaxHeight {
		img = imaging.Resize(img, 0, pre.MaxHeight, imaging.Lanczos)
	}
	return img
}
