package overlay

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"

	"github.com/alex-li-fetchai/evitsam-agent/internal/segment"
)

// DefaultMIME is the output encoding used when the caller did not configure
// one. The original service always replied with PNG.
const DefaultMIME = "image/png"

const jpegQuality = 92

// Encode produces the outbound overlay payload in the requested encoding.
//
// When the backend already delivered the overlay in the requested encoding
// its bytes pass through untouched, so nothing lossy happens on the reply
// path. Otherwise the overlay is transcoded, and if the backend sent no
// overlay at all one is rendered from the mask metadata over the source
// image. Returns the payload and the MIME type it was encoded as.
func Encode(res *segment.Result, src image.Image, targetMIME string) ([]byte, string, error) {
	if targetMIME == "" {
		targetMIME = DefaultMIME
	}
	if !supportedOutput(targetMIME) {
		return nil, "", segment.Errorf(segment.KindEncodingError, "unsupported output mime type %q", targetMIME)
	}

	if len(res.OverlayBytes) > 0 {
		if res.OverlayMIME == targetMIME {
			return res.OverlayBytes, targetMIME, nil
		}
		img, _, err := image.Decode(bytes.NewReader(res.OverlayBytes))
		if err != nil {
			return nil, "", segment.WrapError(segment.KindEncodingError, err, "decode backend overlay for transcoding")
		}
		return encodeImage(img, targetMIME)
	}

	return encodeImage(Render(src, res.Masks), targetMIME)
}

func supportedOutput(mimeType string) bool {
	switch mimeType {
	case "image/png", "image/jpeg", "image/webp":
		return true
	}
	return false
}

func encodeImage(img image.Image, targetMIME string) ([]byte, string, error) {
	var buf bytes.Buffer
	var err error
	switch targetMIME {
	case "image/png":
		err = png.Encode(&buf, img)
	case "image/jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case "image/webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: 90})
	}
	if err != nil {
		return nil, "", segment.WrapError(segment.KindEncodingError, err, "encode overlay as %s", targetMIME)
	}
	return buf.Bytes(), targetMIME, nil
}

// MaskMetadata serializes mask metadata as a compact JSON array, preserving
// the backend's ordering. Returns nil when there are no masks.
func MaskMetadata(masks []segment.Mask) (json.RawMessage, error) {
	if len(masks) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(masks)
	if err != nil {
		return nil, segment.WrapError(segment.KindEncodingError, err, "serialize mask metadata")
	}
	return b, nil
}
