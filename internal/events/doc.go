// Package events carries "session metadata changed" notifications from the
// chat controller to session list views.
package events
