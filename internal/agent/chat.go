package agent

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"
)

// Content item types carried inside an envelope.
const (
	ContentText         = "text"
	ContentResource     = "resource"
	ContentStartSession = "start-session"
	ContentMetadata     = "metadata"
)

// Envelope is one chat message on the wire. A message either carries content
// items or acknowledges a previous message.
type Envelope struct {
	MsgID     string    `json:"msg_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// Parameters carries the caller's segmentation tuning values. Untyped:
	// validation happens at the parameter resolver, not here.
	Parameters map[string]interface{} `json:"parameters,omitempty"`

	Content []Content `json:"content,omitempty"`

	// AcknowledgedMsgID marks this envelope as an acknowledgement.
	AcknowledgedMsgID string `json:"acknowledged_msg_id,omitempty"`
}

// Content is one item inside an envelope.
type Content struct {
	Type string `json:"type"`

	// Text content.
	Text string `json:"text,omitempty"`

	// Resource content: a base64 payload with its declared MIME type.
	MIMEType string `json:"mime_type,omitempty"`
	Contents string `json:"contents,omitempty"`

	// Metadata content.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Masks carries structured per-region metadata on reply resources.
	Masks json.RawMessage `json:"masks,omitempty"`
}

func newEnvelope(content ...Content) *Envelope {
	return &Envelope{
		MsgID:     newMsgID(),
		Timestamp: time.Now().UTC(),
		Content:   content,
	}
}

func newAck(msgID string) *Envelope {
	return &Envelope{
		MsgID:             newMsgID(),
		Timestamp:         time.Now().UTC(),
		AcknowledgedMsgID: msgID,
	}
}

func textContent(text string) Content {
	return Content{Type: ContentText, Text: text}
}

func metadataContent(md map[string]string) Content {
	return Content{Type: ContentMetadata, Metadata: md}
}

// newMsgID returns a random UUIDv4-formatted identifier.
func newMsgID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
