/*
Package transport is the WebSocket client for the chat stream.

A Dialer opens one Session per chat session and connection epoch. The
session read loop reports EventOpen, then EventMessage for every text
frame, then optionally EventError, and always ends with EventClose.
Close never drains pending frames.
*/
package transport
