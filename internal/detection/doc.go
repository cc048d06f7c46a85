// Package detection locates handwritten regions on a photographed answer
// sheet.
//
// A region is the bounding box of one external connected ink component after
// adaptive binarization and a 3x3 morphological closing. Regions smaller than
// a page-relative minimum (see MinSize) are treated as speckle and dropped.
//
// # Backends
//
// Detection is pluggable through a small registry. The pure-Go backend "go"
// is always available. Building with the "gocv" tag adds an "opencv" backend
// that runs the same pipeline through OpenCV.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Limitations
//
// Detection assumes dark ink on lighter paper. Interiors of large solid
// blobs read as background under the adaptive threshold, so filled shapes
// are reported by their outline.
package detection
