// Package glyph cuts handwritten regions into single characters and
// normalizes each character onto the fixed 28x28 canvas the classifiers
// were trained on.
package glyph
