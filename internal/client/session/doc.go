// Package session drives one open board on the client.
//
// A BoardSession loads the board and its widgets, keeps one
// widgetstate.Provider per widget, follows the server's snapshot stream and
// owns the viewport and canvas controller of the view. Render returns what
// the UI should draw.
package session
