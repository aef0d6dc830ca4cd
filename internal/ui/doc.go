// Package ui contains the Bubble Tea program that hosts the launcher.
// The Model type only orchestrates messages; the controller owns session
// state, bind resolution and the reset sequence.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages. Each tea.Msg is
//     routed through a typed handler registry to a focused function: key
//     presses go to the controller's bind resolver first and fall through to
//     the text input when no bind claims them.
//   - After every handler finishUpdate drains the controller's idle queue,
//     then starts any query the controller scheduled. Queries run as tea.Cmd
//     values off the event loop and come back as queryResultMsg; results of
//     superseded queries are dropped by sequence number.
//
// Backend interactions:
//   - A backend.Watcher streams provider refreshes and theme file changes.
//     Refreshes resume a deferred async after-action or re-run the query;
//     theme changes rebuild the matching surface in place.
//   - In service mode open requests arrive as ipc.Session values. A dmenu
//     request stays attached until the controller answers it.
//
// Rendering reads the active theme surface on every frame, so visibility
// and geometry changes made by the controller show up on the next View.
package ui
