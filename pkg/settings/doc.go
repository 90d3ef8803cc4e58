// Package settings implements a hierarchical settings store.
//
// A Tree owns a set of Nodes. Each node has a text value, a set of
// attributes and any number of named child sequences; several children may
// share the same name and keep the order in which they were added.
//
// Trees are read and written through Cursors. A Cursor is a lightweight view
// on one node of a tree: it can be copied freely, and navigating with
// EnterNode returns a new cursor without moving the original one.
//
//	doc := settings.Load("settings.xml", settings.FormatXML, settings.WithLogger(logger))
//	if doc.Status() != settings.StatusNoError {
//		return doc.Err()
//	}
//	width := doc.Root().Find("CJMToolkit/MainWindow/Size/Minimum").Get("Width", 0)
//
// No operation panics or returns an error. Failures degrade to an invalid
// cursor or to DefaultValue and are reported through the tree's logger.
//
// A tree is not safe for concurrent mutation. Once loading has finished it
// may be shared by concurrent readers.
package settings
