// Package atlas loads the textures STR layers refer to.
package atlas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// MaxNameLen caps texture names. STR files store names in fixed 128 byte
// slots and tools tend to leave junk after the terminator.
const MaxNameLen = 48

// ErrNotFound is returned when no search root holds a texture.
var ErrNotFound = errors.New("atlas: texture not found")

// CleanName trims a raw texture name: it stops at the first NUL, drops
// invalid UTF-8 and caps the result at MaxNameLen bytes without splitting a
// rune. Backslashes become slashes.
func CleanName(name string) string {
	if i := strings.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	name = strings.ToValidUTF8(name, "")
	name = strings.ReplaceAll(name, string(utf8.RuneError), "")
	if len(name) > MaxNameLen {
		cut := MaxNameLen
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	return strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
}

// Magenta is the colour STR textures use for "transparent".
var Magenta = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

// Decode reads a PNG or BMP image into NRGBA. With colorKey set, pure
// magenta pixels become fully transparent.
func Decode(r io.Reader, colorKey bool) (*image.NRGBA, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("atlas: decode: %w", err)
	}
	img := toNRGBA(src)
	if colorKey {
		ColorKey(img)
	}
	return img, nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// ColorKey makes every magenta pixel of img transparent, in place.
func ColorKey(img *image.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			p := img.Pix[i : i+4 : i+4]
			if p[0] == Magenta.R && p[1] == Magenta.G && p[2] == Magenta.B {
				p[0], p[1], p[2], p[3] = 0, 0, 0, 0
			}
		}
	}
}

// Options controls where and how textures are found.
type Options struct {
	// Dir is searched first. Empty means the working directory.
	Dir string
	// ColorKey keys out magenta.
	ColorKey bool
	// FS is searched after the disk roots, by cleaned name and then by
	// base name.
	FS fs.FS
	// Placeholder substitutes a generated sprite for missing files instead
	// of failing.
	Placeholder bool
}

// Candidates lists the paths Load tries for name, in order.
func (o Options) Candidates(name string) []string {
	name = CleanName(name)
	if name == "" {
		return nil
	}
	native := filepath.FromSlash(name)
	base := path.Base(name)
	tried := []string{
		filepath.Join(o.Dir, native),
		filepath.Join("assets", native),
		filepath.Join(o.Dir, base),
		filepath.Join("assets", base),
		base,
	}
	seen := make(map[string]bool, len(tried))
	out := tried[:0]
	for _, p := range tried {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Load reads a texture from the first candidate path that decodes.
func Load(name string, opts Options) (*image.NRGBA, error) {
	var errs []error
	for _, p := range opts.Candidates(name) {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		img, err := Decode(bytes.NewReader(data), opts.ColorKey)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		return img, nil
	}
	if opts.FS != nil {
		clean := CleanName(name)
		for _, p := range []string{clean, path.Base(clean)} {
			data, err := fs.ReadFile(opts.FS, p)
			if err != nil {
				continue
			}
			img, err := Decode(bytes.NewReader(data), opts.ColorKey)
			if err != nil {
				errs = append(errs, fmt.Errorf("embedded %s: %w", p, err))
				continue
			}
			return img, nil
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if opts.Placeholder {
		return Placeholder(PlaceholderSize), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}
