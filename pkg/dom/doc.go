// Package dom is the host DOM environment that gaugekit renders into.
//
// Nodes are stored as golang.org/x/net/html nodes, so a mounted tree can be
// serialized with html.Render and queried with CSS selectors through
// cascadia. On top of that storage the package adds what a browser document
// provides and the renderer relies on: owner documents, namespaces,
// attributes, class lists, inline style, reflected properties, event
// listeners, and AdoptNode/ImportNode/CloneNode.
//
// # Documents
//
// Every node belongs to exactly one Document. A node created by one document
// can only be appended into another after it is adopted or imported:
//
//	build := dom.NewDocument()
//	mount := dom.NewDocument(dom.WithAdoptPolicy(dom.AdoptUnavailable), dom.WithStrictAppend())
//
//	el, _ := build.CreateElement("div")
//	if _, err := mount.Body().AppendChild(el); errors.Is(err, dom.ErrWrongDocument) {
//	    clone, _ := mount.ImportNode(el, true)
//	    mount.Body().AppendChild(clone)
//	}
//
// The adopt policy and strict append flag let tests reproduce host
// environments where adoptNode is missing or refuses certain nodes.
//
// # Queries
//
// QuerySelector and QuerySelectorAll accept any selector cascadia parses and
// search descendants only, in document order. ElementByID is an exact
// string walk and needs no escaping.
package dom
