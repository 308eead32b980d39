// Package tui is the terminal front end: a template browser and the flow
// builder, drawn with goterm and driven by keyboard and SGR mouse input.
//
// All view state is owned by the App event loop. Network calls run in
// goroutines and hand their results back through a Post callback.
package tui
