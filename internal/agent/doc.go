// Package agent implements the chat-message front-end for the segmentation
// service.
//
// The transport is line-delimited JSON envelopes: one envelope per line on
// stdin, reply envelopes on stdout, logs on stderr. The envelope shape
// mirrors the agent chat protocol the service participates in: a message
// carries a list of content items (text, resource, start-session), replies
// carry text, resource, or metadata content, and every inbound message is
// acknowledged before it is processed.
//
// Processing per message with an image resource:
//
//	resolve parameters -> decode image -> invoke backend -> encode reply
//
// Messages are handled concurrently; stdout writes are serialized. Every
// failure becomes a reply envelope carrying the error kind and reason; the
// loop itself never dies on a bad request.
package agent
