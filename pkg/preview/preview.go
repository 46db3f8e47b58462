// Package preview draws a photon map seen from above, for checking where
// photons landed without running a renderer.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/photon"
)

// Options controls the preview raster
type Options struct {
	Width, Height int     // output image size
	Resolution    int     // density cells along the longer side of the photon bounds
	Exposure      float64 // brightness of an average non-empty cell
}

// DefaultOptions returns a 512x512 preview over a 128 cell grid
func DefaultOptions() Options {
	return Options{Width: 512, Height: 512, Resolution: 128, Exposure: 1.0}
}

// Render bins every photon of store into a grid over the X/Z extent of its
// bounds, tone maps the summed colours and scales the grid to the output size
func Render(store *photon.Store, opts Options) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	if store == nil || store.Len() == 0 || opts.Resolution <= 0 {
		return dst
	}

	bounds := store.Bounds()
	size := bounds.Size()
	extent := math.Max(size.X, size.Z)
	if extent <= 0 {
		extent = 1
	}
	nx := max(1, int(math.Ceil(float64(opts.Resolution)*size.X/extent)))
	nz := max(1, int(math.Ceil(float64(opts.Resolution)*size.Z/extent)))

	cells := make([]core.Vec3, nx*nz)
	store.ForEach(func(_ photon.Handle, r *photon.Record) {
		p := r.Position()
		i := cellIndex(p.X-bounds.Min.X, size.X, nx)
		j := cellIndex(p.Z-bounds.Min.Z, size.Z, nz)
		cells[j*nx+i] = cells[j*nx+i].Add(r.Colour())
	})

	grid := image.NewRGBA(image.Rect(0, 0, nx, nz))
	scale := exposureScale(cells, opts.Exposure)
	for j := 0; j < nz; j++ {
		for i := 0; i < nx; i++ {
			c := cells[j*nx+i].Multiply(scale)
			grid.SetRGBA(i, j, color.RGBA{R: toneMap(c.X), G: toneMap(c.Y), B: toneMap(c.Z), A: 255})
		}
	}

	draw.CatmullRom.Scale(dst, dst.Bounds(), grid, grid.Bounds(), draw.Src, nil)
	return dst
}

func cellIndex(offset, size float64, n int) int {
	if size <= 0 {
		return 0
	}
	return min(n-1, max(0, int(offset/size*float64(n))))
}

// exposureScale maps the mean luminance of the non-empty cells to exposure
func exposureScale(cells []core.Vec3, exposure float64) float64 {
	sum, n := 0.0, 0
	for _, c := range cells {
		if l := c.Luminance(); l > 0 {
			sum += l
			n++
		}
	}
	if n == 0 || sum <= 0 {
		return 0
	}
	return exposure * float64(n) / sum
}

// toneMap applies Reinhard and gamma 2.2 to one channel
func toneMap(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	v = math.Pow(v/(1+v), 1/2.2)
	return uint8(math.Min(255, v*255+0.5))
}

// WriteWebP encodes img losslessly as WebP
func WriteWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("preview: webp encode: %w", err)
	}
	return nil
}

// Save renders store and writes it to path as WebP
func Save(path string, store *photon.Store, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("preview: close %s: %w", path, cerr)
		}
	}()
	return WriteWebP(f, Render(store, opts))
}
