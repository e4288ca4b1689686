// Package ws is the realtime transport: it upgrades HTTP requests to
// websockets, authenticates the first message, and feeds inbound edit and
// save messages to the hub.
//
// Each connection has one reader (the handler goroutine) and one writer.
// Outbound messages are encoded when they are sent, so later mutations of
// the document never leak into queued frames.
package ws
