// Package ocr recognizes map labels with the Tesseract OCR engine.
//
// Tesseract is reached through gosseract/v2 and must be installed together
// with training data for the configured language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-ces
//   - macOS: brew install tesseract tesseract-lang
//
// The engine sits behind the Recognizer interface. TextExtractor consumes a
// Recognizer and produces text map elements: one closed bounding box polygon
// per word with properties text, confidence (0-1) and font_size (box height
// in pixels).
//
// # Confidence
//
// Tesseract reports word confidence on a 0-100 scale. TextExtractor keeps
// words scoring strictly above its threshold (30 by default) and rescales
// the score to 0-1 for the element.
package ocr
