// Package sam invokes the external EfficientViT-SAM segmentation backend.
//
// The backend is an opaque capability reached over HTTP (a hosted gradio
// endpoint by default). Client speaks its predict API; Invoker wraps any
// Segmenter with the two policies the rest of the system relies on: a
// per-request timeout and an admission gate that bounds how many inference
// calls may be in flight at once. With the gate sized to one the backend is
// treated as non-reentrant and calls are fully serialized.
package sam
