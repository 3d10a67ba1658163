// Package sign stamps an approver's signature image onto the last page of
// a PDF. The image is scaled to fit a fixed box near the bottom-right of
// the page, keeping its aspect ratio, and composited fully opaque so a
// transparent PNG blends into the page.
package sign

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	_ "image/jpeg"
	_ "image/png"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrSigning marks a failed signature overlay.
var ErrSigning = errors.New("sign: signing failed")

// Placement is the signature box on the page: X/Y anchor the lower-left
// corner of the box in points from the page's bottom-left corner, and the
// image is fitted inside Width x Height.
type Placement struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// DefaultPlacement targets the signature block of the generated notices:
// a 150x50pt box anchored at (400, 30).
var DefaultPlacement = Placement{X: 400, Y: 30, Width: 150, Height: 50}

func (p *Placement) defaults() {
	if p.Width <= 0 || p.Height <= 0 {
		p.Width, p.Height = DefaultPlacement.Width, DefaultPlacement.Height
	}
	if p.X == 0 && p.Y == 0 {
		p.X, p.Y = DefaultPlacement.X, DefaultPlacement.Y
	}
}

// Apply stamps signature (PNG or JPEG bytes) onto the last page of pdf
// and returns the signed document. Pages before the last are untouched.
func Apply(pdf, signature []byte, pl Placement) ([]byte, error) {
	pl.defaults()

	pages, err := PageCount(pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	if pages == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrSigning)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(signature))
	if err != nil {
		return nil, fmt.Errorf("%w: signature image: %v", ErrSigning, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: signature image has zero size", ErrSigning)
	}

	// pdfcpu renders the image at one point per pixel; fit it inside the
	// box without ever upscaling.
	scale := min(pl.Width/float64(cfg.Width), pl.Height/float64(cfg.Height))
	if scale > 1 {
		scale = 1
	}

	dir, err := os.MkdirTemp("", "sign-*")
	if err != nil {
		return nil, fmt.Errorf("%w: temp dir: %v", ErrSigning, err)
	}
	defer os.RemoveAll(dir)

	ext := ".png"
	if format == "jpeg" {
		ext = ".jpg"
	}
	docPath := filepath.Join(dir, "doc.pdf")
	sigPath := filepath.Join(dir, "signature"+ext)
	if err := os.WriteFile(docPath, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write pdf: %v", ErrSigning, err)
	}
	if err := os.WriteFile(sigPath, signature, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write signature: %v", ErrSigning, err)
	}

	desc := fmt.Sprintf("scale:%.4f abs, pos:bl, rot:0, op:1", scale)
	wm, err := pdfcpu.ParseImageWatermarkDetails(sigPath, desc, true, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: watermark: %v", ErrSigning, err)
	}
	wm.Dx = pl.X
	wm.Dy = pl.Y

	conf := model.NewDefaultConfiguration()
	lastPage := []string{strconv.Itoa(pages)}
	if err := pdfapi.AddWatermarksFile(docPath, "", lastPage, wm, conf); err != nil {
		return nil, fmt.Errorf("%w: stamp: %v", ErrSigning, err)
	}

	signed, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read signed pdf: %v", ErrSigning, err)
	}
	return signed, nil
}
