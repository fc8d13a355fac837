// Package overlay packages a segmentation result for transmission: it
// renders a visual overlay when the backend supplied only mask metadata,
// transcodes the overlay to the configured output encoding, and serializes
// mask metadata as a compact JSON payload. It performs no I/O beyond
// producing bytes.
package overlay
