package segment

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Request is a validated inbound segmentation request: the decoded pixel
// buffer plus the original encoded bytes, which are what actually travel to
// the backend. One Request per inbound message; nothing is shared across
// requests.
type Request struct {
	Image image.Image
	MIME  string
	Raw   []byte
}

// formatByMIME maps the supported inbound MIME types to the format name the
// registered image decoders report.
var formatByMIME = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
}

// Decode validates an inbound payload against its declared MIME type and
// produces a Request with the decoded pixel buffer attached.
//
// The declared type must be one of the supported image encodings
// (unsupported_media_type otherwise), the bytes must decode as an image
// (malformed_image otherwise), and the decoded format must match the declared
// type. The last check catches payloads whose bytes are a valid image of some
// other format than the caller claimed.
func Decode(data []byte, mimeType string) (*Request, error) {
	norm := normalizeMIME(mimeType)
	want, ok := formatByMIME[norm]
	if !ok {
		return nil, Errorf(KindUnsupportedMediaType, "unsupported mime type %q", mimeType)
	}
	if len(data) == 0 {
		return nil, Errorf(KindMalformedImage, "empty image payload")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, WrapError(KindMalformedImage, err, "cannot decode %s payload", norm)
	}
	if format != want {
		return nil, Errorf(KindMalformedImage, "declared %s but content is %s", norm, format)
	}

	return &Request{Image: img, MIME: norm, Raw: data}, nil
}

// normalizeMIME lowercases the type and strips any parameters
// (e.g. "image/PNG; charset=binary" -> "image/png").
func normalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
