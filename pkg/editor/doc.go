// Package editor is the headless core of the flow builder.
//
// Builder owns the node and connection lists and the selection. Everything
// else in the package is presentation state that reads a snapshot of the
// graph and asks for changes by dispatching typed intents:
//
//   - Canvas lays nodes out at their stored positions and computes one
//     curve per connection whose endpoints both resolve.
//   - NodeCard is the per-node drag state machine. A drag subscribes to
//     the document-level PointerBus when the header is pressed and disposes
//     the subscription on release or unmount.
//   - Panel mirrors the selected node's title, content and buttons and
//     dispatches every edit immediately.
//   - Palette and Viewport back the quick-add menu and the zoom controls.
//
// The package performs no I/O and none of its operations fail.
package editor
