package ocr

// Package ocr plugs third-party OCR engines (for example, Tesseract or
// cloud services) into redaction of scanned documents. The interfaces are
// intentionally small and transport-agnostic so engines can be backed by
// local binaries, native libraries, or remote APIs without leaking
// provider-specific concerns into callers.
