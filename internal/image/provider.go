package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"

	"codeberg.org/snonux/grunwald/internal/cache"
	"codeberg.org/snonux/grunwald/internal/word"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// NoImageID is the id display layers use for words without an image
const NoImageID = "no_image"

const (
	DefaultWidth  = 250
	DefaultHeight = 250
)

// ErrNoImage is attached to placeholder results for NoImageID and for
// cached words that cannot own an image
var ErrNoImage = errors.New("word has no image")

var placeholderColor = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}

// Size is a requested display size; zero fields fall back to the default
type Size struct {
	Width  int
	Height int
}

// Result is what a display layer receives. Image is never nil: on any
// failure it is a placeholder, Valid is false and Err says why.
type Result struct {
	ID    string
	Image image.Image
	Valid bool
	Err   error
}

// Fetcher downloads the page image of a word
type Fetcher interface {
	FetchWordImage(ctx context.Context, name string) (word.Image, error)
}

// Provider serves word images for display, from the cache when the
// current word already carries the bytes and from the fetcher otherwise.
type Provider struct {
	cache   *cache.WordCache
	fetcher Fetcher
	def     Size
	log     *slog.Logger
}

// NewProvider creates an image provider. def is used for zero requested sizes.
func NewProvider(c *cache.WordCache, fetcher Fetcher, def Size, logger *slog.Logger) *Provider {
	if def.Width <= 0 {
		def.Width = DefaultWidth
	}
	if def.Height <= 0 {
		def.Height = DefaultHeight
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{
		cache:   c,
		fetcher: fetcher,
		def:     def,
		log:     logger.With("component", "image"),
	}
}

// RequestImage resolves the image of id in the background.
// The channel receives exactly one result.
func (p *Provider) RequestImage(ctx context.Context, id string, size Size) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		out <- p.Image(ctx, id, size)
	}()
	return out
}

// Image resolves the image of id synchronously
func (p *Provider) Image(ctx context.Context, id string, size Size) Result {
	size = p.normalize(size)

	if id == "" || id == NoImageID {
		return p.placeholder(id, size, ErrNoImage)
	}

	img, err := p.load(ctx, id)
	if err != nil {
		return p.placeholder(id, size, err)
	}

	decoded, format, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return p.placeholder(id, size, fmt.Errorf("failed to decode image of %q: %w", id, err))
	}

	scaled := scale(decoded, bound(size, img, decoded))
	p.log.Debug("image ready", "id", id, "format", format,
		"width", scaled.Bounds().Dx(), "height", scaled.Bounds().Dy())
	return Result{ID: id, Image: scaled, Valid: true}
}

// load returns the image bytes of id, fetching and caching them when the
// cached word does not carry them yet
func (p *Provider) load(ctx context.Context, id string) (word.Image, error) {
	current := p.cache.LoadWordContent()
	if current.Name == id && !current.IsEmpty() && !current.HasImage() {
		return word.Image{}, fmt.Errorf("%s is a %s: %w", id, current.Type, ErrNoImage)
	}
	if current.Name == id && current.Image.HasData() {
		p.log.Debug("image served from cache", "id", id)
		return current.Image, nil
	}

	img, err := p.fetcher.FetchWordImage(ctx, id)
	if err != nil {
		return word.Image{}, err
	}

	if current.Name == id {
		img.ID = current.Image.ID
	}
	if !p.cache.StoreWordImageFor(id, img) {
		p.log.Debug("cached word changed, image not stored", "id", id)
	}
	return img, nil
}

func (p *Provider) normalize(size Size) Size {
	if size.Width <= 0 {
		size.Width = p.def.Width
	}
	if size.Height <= 0 {
		size.Height = p.def.Height
	}
	return size
}

func (p *Provider) placeholder(id string, size Size, err error) Result {
	p.log.Warn("serving placeholder image", "id", id, "error", err)
	return Result{ID: id, Image: Placeholder(size), Valid: false, Err: err}
}

// Placeholder returns a plain image of the given size
func Placeholder(size Size) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: placeholderColor}, image.Point{}, draw.Src)
	return dst
}

// bound limits size to the original dimensions. The metadata dimensions
// are used when known, else the decoded ones. The aspect ratio is not kept.
func bound(size Size, meta word.Image, decoded image.Image) Size {
	origW, origH := meta.Width, meta.Height
	if origW <= 0 || origH <= 0 {
		origW, origH = decoded.Bounds().Dx(), decoded.Bounds().Dy()
	}
	return Size{Width: min(size.Width, origW), Height: min(size.Height, origH)}
}

func scale(src image.Image, size Size) image.Image {
	b := src.Bounds()
	if b.Dx() == size.Width && b.Dy() == size.Height {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// EncodePNG writes the result image as PNG
func EncodePNG(w io.Writer, r Result) error {
	if r.Image == nil {
		return errors.New("result has no image")
	}
	if err := png.Encode(w, r.Image); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
