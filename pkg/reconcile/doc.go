// Package reconcile points reference handles at the nodes that ended up in
// a mount container.
//
// The builder binds every handle to the node it created. Mounting into
// another document may copy those nodes, leaving handles pointing at
// detached build-time nodes. Reconcile corrects them in two phases.
//
// Phase 1 looks at each handle on its own, in tree pre-order:
//
//   - a handle already inside the container is accepted as is;
//   - an id is looked up in the container and wins outright;
//   - the full set of data-* attributes is matched as one selector;
//   - the first class token is matched, every declared token verified.
//
// Phase 2 walks the VNode tree against the mounted DOM and binds what is
// left by position, falling back to the same id, data and class lookups
// scoped to the current subtree.
//
// A node is claimed by at most one handle per pass. Handles that stay
// unresolved and still point outside the container are cleared. Mismatches
// never produce errors; they show up in the Report.
//
// Siblings that share a tag and class and carry no id or data attribute
// cannot be told apart. Give each referenced sibling a distinguishing
// attribute.
package reconcile
