// Package render builds VNode trees into DOM nodes and mounts them.
//
// A Builder creates nodes in one document. Intrinsic tags in the fixed SVG
// set are created in the SVG namespace, everything else in HTML, no matter
// where they are nested. Bindings apply in declaration order; reactive
// values are set eagerly and then follow their source until vdom.Release.
// Reference handles receive the built node (or component instance)
// immediately.
//
//	b := render.NewBuilder(buildDoc)
//	root, err := b.Build(tree)
//
// Mount attaches a built tree to a container that may belong to a different
// document:
//
//	res, err := render.NewMounter().Mount(tree, container)
//
// Foreign nodes are adopted when the container's document allows it, and
// otherwise imported or recreated node by node. After the append a
// verification walk repairs stray foreign descendants and a re-stamp walk
// points every VNode at the node that now holds its position, re-attaching
// listeners to nodes that were copied. References still point at build-time
// nodes after Mount; package reconcile corrects them.
package render
