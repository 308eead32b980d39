// Package flow defines the dialog graph edited by botflow: nodes, the
// connections between them and the response buttons attached to a node.
//
// The types here carry no editor behavior. They are shared by the editor
// core, the remote API client, the draft store and the import/export
// commands, and they marshal to the same JSON shape the remote API uses
// (sourceId/targetId for connections, data.title/data.content for nodes).
package flow
