// Package imaging provides the low-level image operations used by the sheet
// recognition pipeline.
//
// This package implements page decoding and caching, grayscale conversion,
// padded crops, binarization (global Otsu, Gaussian-weighted adaptive, and
// Sauvola), and morphology on binary masks. All operations work with standard
// Go image types and use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// Every image returned by this package is rebased so that its bounds start at
// (0,0). Page coordinates and pixel indices are therefore interchangeable once
// a page has passed through DecodePage or ToGray.
//
// # Polarity
//
// Binarization functions return a Mask in which true marks ink. Handwriting
// is assumed to be darker than the paper, so every binarizer is "inverted":
// dark pixels become foreground.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other operations are
// stateless and allocate their results, so they may be called concurrently on
// shared read-only inputs.
package imaging
