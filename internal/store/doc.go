/*
Package store holds the ordered message list of a single conversation.

Messages are keyed by id; an id is unique within a store at any instant.
RemapID reassigns an id but never produces a duplicate. The store does no
locking: the chat controller owns it and serialises every call.
*/
package store
