package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/alex-li-fetchai/evitsam-agent/internal/overlay"
	"github.com/alex-li-fetchai/evitsam-agent/internal/segment"
)

// handleMessage processes one inbound envelope end to end and sends the
// reply envelopes. All failures are reported to the caller; none escape.
func (a *Agent) handleMessage(ctx context.Context, env *Envelope) {
	var (
		imageData []byte
		imageMIME string
		hasImage  bool
		hasText   bool
	)

	for _, item := range env.Content {
		switch item.Type {
		case ContentStartSession:
			a.send(newEnvelope(metadataContent(map[string]string{"attachments": "true"})))
		case ContentText:
			hasText = true
			log.Printf("Got text: %s", item.Text)
		case ContentResource:
			data, err := base64.StdEncoding.DecodeString(item.Contents)
			if err != nil {
				a.sendError(segment.Errorf(segment.KindMalformedImage, "resource contents are not valid base64"))
				return
			}
			imageData = data
			imageMIME = item.MIMEType
			hasImage = true
		}
	}

	if !hasImage {
		if hasText {
			a.send(newEnvelope(textContent("Please send an image to segment.")))
		}
		return
	}

	params, err := segment.ResolveParams(env.Parameters)
	if err != nil {
		a.sendError(err)
		return
	}

	req, err := segment.Decode(imageData, imageMIME)
	if err != nil {
		a.sendError(err)
		return
	}

	res, err := a.invoker.Invoke(ctx, req, params)
	if err != nil {
		a.sendError(err)
		return
	}

	payload, outMIME, err := overlay.Encode(res, req.Image, a.outputMIME)
	if err != nil {
		a.sendError(err)
		return
	}
	masks, err := overlay.MaskMetadata(res.Masks)
	if err != nil {
		a.sendError(err)
		return
	}

	a.send(newEnvelope(textContent(statusLine(res))))
	a.send(newEnvelope(Content{
		Type:     ContentResource,
		MIMEType: outMIME,
		Contents: base64.StdEncoding.EncodeToString(payload),
		Metadata: map[string]string{"role": "generated-image"},
		Masks:    masks,
	}))
}

// statusLine is the human-readable first reply.
func statusLine(res *segment.Result) string {
	if len(res.Masks) > 0 {
		return fmt.Sprintf("Segmented image into %d regions with EfficientViT-SAM.", len(res.Masks))
	}
	return "Image processed with EfficientViT-SAM."
}

// sendError reports a failed request to the caller: a text line with the
// reason plus a metadata item carrying the stable error kind.
func (a *Agent) sendError(err error) {
	kind := segment.KindOf(err)
	if kind == "" {
		kind = segment.KindInferenceError
	}
	log.Printf("Request failed (%s): %v", kind, err)
	a.send(newEnvelope(
		textContent(fmt.Sprintf("Segmentation failed: %v", err)),
		metadataContent(map[string]string{"error": string(kind)}),
	))
}
