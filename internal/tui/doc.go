// Package tui is the terminal front end of the chat client.
//
// A bubbletea Model renders the controller's snapshots and turns the input
// line into controller calls. Controller callbacks (snapshots, notices,
// navigation, auth rejection, session events) arrive on other goroutines;
// Bridge hands them to the program as messages. Only the newest snapshot is
// kept, so a slow terminal never replays stale states.
//
// Input commands:
//
//	<text>              send a message
//	/edit <n> <text>    rewrite the n-th of your messages
//	/regen              regenerate the last reply
//	/stop               stop the reply in progress (also Esc)
//	/new                start a new chat
//	/open <id>          open a saved chat
//	/attach <path>      attach a file to the next message
//	/login <token>      set the access token
//	/sessions           toggle the saved chats pane
//	/help, /quit
package tui
