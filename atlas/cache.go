package atlas

import (
	"errors"
	"image"
	"image/color"
	"sort"
	"sync"

	"github.com/creachadair/mds/mapset"
	"github.com/fogleman/gg"

	"github.com/ADHSoft/ro-str-viewer/effect"
)

// Cache loads textures on first use and keeps them by cleaned name. It is
// safe for concurrent use.
type Cache struct {
	opts Options

	mu     sync.Mutex
	images map[string]*image.NRGBA
}

func NewCache(opts Options) *Cache {
	return &Cache{opts: opts, images: make(map[string]*image.NRGBA)}
}

// Get returns the named texture, loading it if needed. Failures are not
// cached, so a texture that appears later is picked up.
func (c *Cache) Get(name string) (*image.NRGBA, error) {
	key := CleanName(name)
	c.mu.Lock()
	img, ok := c.images[key]
	c.mu.Unlock()
	if ok {
		return img, nil
	}

	img, err := Load(key, c.opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.images[key]; ok {
		return prev, nil
	}
	c.images[key] = img
	return img, nil
}

// Resolve implements effect.TextureProvider with the decoded image as handle.
func (c *Cache) Resolve(_, _ int, name string) (effect.Handle, error) {
	img, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Forget drops every cached texture.
func (c *Cache) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.images)
}

// Names returns the cached texture names, sorted.
func (c *Cache) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.images))
	for n := range c.images {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TextureNames returns the distinct cleaned texture names e refers to, in
// first-use order.
func TextureNames(e *effect.Effect) []string {
	seen := mapset.New[string]()
	var names []string
	for _, l := range e.Layers {
		for _, t := range l.Textures {
			n := CleanName(t)
			if n == "" || seen.Has(n) {
				continue
			}
			seen.Add(n)
			names = append(names, n)
		}
	}
	return names
}

// Preload loads every texture of e and reports all that failed.
func (c *Cache) Preload(e *effect.Effect) error {
	var errs []error
	for _, n := range TextureNames(e) {
		if _, err := c.Get(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PlaceholderSize is the edge length of generated placeholder textures.
const PlaceholderSize = 64

// Placeholder draws a soft white disc, the shape most effect sprites have.
func Placeholder(size int) *image.NRGBA {
	dc := gg.NewContext(size, size)
	r := float64(size) / 2
	g := gg.NewRadialGradient(r, r, 0, r, r, r)
	g.AddColorStop(0, colorAlpha(255))
	g.AddColorStop(0.6, colorAlpha(160))
	g.AddColorStop(1, colorAlpha(0))
	dc.SetFillStyle(g)
	dc.DrawCircle(r, r, r)
	dc.Fill()
	return toNRGBA(dc.Image())
}

func colorAlpha(a uint8) color.NRGBA {
	return color.NRGBA{R: 255, G: 255, B: 255, A: a}
}
