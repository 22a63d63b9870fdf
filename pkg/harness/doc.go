// Package harness runs components in an isolated DOM environment.
//
// An Env owns a mount document with a container element, optionally a
// separate build document, and the simulator mocks components talk to.
// Render runs the whole pipeline:
//
//  1. build the VNode tree into the build document
//  2. collect reference sites
//  3. mount into the container
//  4. reconcile reference handles
//  5. call OnAfterRender on every component, children first
//
// # Quick Start
//
//	func TestAirspeed(t *testing.T) {
//	    env := harness.New(
//	        harness.WithSeparateBuildDocument(),
//	        harness.WithAdoptPolicy(dom.AdoptUnavailable),
//	    )
//	    defer env.Close()
//
//	    m, err := env.RenderComponent(context.Background(), NewAirspeed(env.SimVars()))
//	    if err != nil {
//	        t.Fatalf("render: %v", err)
//	    }
//	    if !m.Report.OK() {
//	        t.Errorf("unresolved refs: %s", m.Report)
//	    }
//	}
//
// # Documents
//
// With WithSeparateBuildDocument every mount crosses a document boundary,
// which is what exercises adoption, copying and reconciliation. The adopt
// policy selects whether the mount document adopts natively, lacks
// adoptNode entirely, or rejects every adoption.
//
// # Teardown
//
// Mounted.Destroy calls each component's Destroy and releases reactive
// bindings. Env.Reset does that for everything and starts over with a new
// container.
package harness
