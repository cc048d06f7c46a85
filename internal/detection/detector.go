package detection

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/ironsheep/sheet-grader/internal/imaging"
)

// ErrNoRegions is returned when a page yields no region large enough to be
// handwriting.
var ErrNoRegions = errors.New("no character candidates found")

// Binarizer names accepted in Options.
const (
	BinarizerGaussian = "gaussian"
	BinarizerSauvola  = "sauvola"
)

// DefaultBackend is the pure-Go detector.
const DefaultBackend = "go"

// Options tunes region detection.
type Options struct {
	Binarizer     string  // "gaussian" (default) or "sauvola"
	BlockSize     int     // adaptive neighbourhood, odd
	C             float64 // constant subtracted from the local mean
	SauvolaK      float64
	SauvolaWindow int
}

// DefaultOptions returns the settings tuned for phone photos of answer sheets.
func DefaultOptions() Options {
	return Options{
		Binarizer:     BinarizerGaussian,
		BlockSize:     11,
		C:             2,
		SauvolaK:      0.3,
		SauvolaWindow: 19,
	}
}

// Validate reports invalid option combinations.
func (o Options) Validate() error {
	switch o.Binarizer {
	case BinarizerGaussian:
		if o.BlockSize < 3 || o.BlockSize%2 == 0 {
			return fmt.Errorf("block size must be odd and at least 3, got %d", o.BlockSize)
		}
	case BinarizerSauvola:
		if o.SauvolaWindow < 3 {
			return fmt.Errorf("sauvola window must be at least 3, got %d", o.SauvolaWindow)
		}
	default:
		return fmt.Errorf("unknown binarizer %q", o.Binarizer)
	}
	return nil
}

// Detector locates candidate handwriting regions on a page.
type Detector interface {
	// Detect returns the regions of page in detection order, or ErrNoRegions.
	Detect(page image.Image) ([]Region, error)
}

// Factory builds a Detector for the given options.
type Factory func(Options) (Detector, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]Factory{
		DefaultBackend: func(o Options) (Detector, error) { return NewPixelDetector(o) },
	}
)

// Register makes a detector backend available under name. Registering the
// same name twice replaces the earlier factory.
func Register(name string, f Factory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = f
}

// Backends lists registered backend names in sorted order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the detector registered under backend.
func New(backend string, opts Options) (Detector, error) {
	if backend == "" {
		backend = DefaultBackend
	}
	backendsMu.RLock()
	f, ok := backends[backend]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown detector backend %q (available: %v)", backend, Backends())
	}
	return f(opts)
}

// PixelDetector is the pure-Go region detector.
type PixelDetector struct {
	opts Options
}

// NewPixelDetector validates opts and returns a detector using them.
func NewPixelDetector(opts Options) (*PixelDetector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &PixelDetector{opts: opts}, nil
}

// Detect finds handwriting regions on page.
//
// # Algorithm
//
//  1. Convert to grayscale and apply a light Gaussian blur.
//  2. Binarize with the configured adaptive threshold, ink as foreground.
//  3. Close the mask with a 3x3 rectangle to bridge gaps within a character.
//  4. Take the bounding box of every external connected component.
//  5. Keep boxes at least MinSize for the page.
//
// Returns ErrNoRegions when nothing survives the size filter.
func (d *PixelDetector) Detect(page image.Image) ([]Region, error) {
	gray := imaging.ToGray(page)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()

	closed := d.Binarize(imaging.Smooth(gray)).Close()

	regions := FilterBySize(ExternalComponents(closed), w, h)
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}
	return regions, nil
}

// Binarize applies the configured adaptive threshold to gray.
func (d *PixelDetector) Binarize(gray *image.Gray) *imaging.Mask {
	if d.opts.Binarizer == BinarizerSauvola {
		return imaging.SauvolaInv(gray, d.opts.SauvolaK, d.opts.SauvolaWindow)
	}
	return imaging.AdaptiveGaussianInv(gray, d.opts.BlockSize, d.opts.C)
}
