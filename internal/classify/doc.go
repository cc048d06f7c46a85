// Package classify wraps the pretrained digit and letter models behind a
// single Classifier contract.
//
// A Classifier receives normalized 28x28 canvases and returns one Prediction
// per canvas: the argmax label and the full probability vector. Three
// implementations are provided:
//
//   - Remote: a model served over HTTP with a TensorFlow Serving style
//     REST API ("instances" in, "predictions" out).
//   - Tesseract: a model-free fallback using single-character Tesseract
//     recognition with a label whitelist (build tag "tesseract").
//   - Lazy: defers construction of another Classifier until first use and
//     keeps the first successful build. Concurrent first calls build once;
//     a failed build is retried on the next call.
//
// ReadNumber and ReadOption implement the two reading paths of a sheet:
// multi-digit question numbers are segmented and concatenated, option
// letters are read as one glyph.
//
// # Thread Safety
//
// Remote and Lazy are safe for concurrent use. Tesseract serializes calls
// with a mutex because the underlying client is not reentrant.
package classify
