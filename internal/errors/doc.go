// Package errors provides structured, actionable error messages for gaugekit.
//
// A GaugeError carries a registered code, an optional position in a fixture
// or gaugekit.json file, the source lines around that position, a hint and a
// documentation link. Sources are excerpted from memory; nothing is re-read
// from disk when an error is built.
//
// # Error Categories
//
// Errors are organized into categories:
//   - build: component instantiation and render failures
//   - mount: nodes that cannot be made appendable to the target document
//   - dom: host document operation failures
//   - config: gaugekit.json problems
//   - fixture: YAML fixture parse and expectation failures
//   - snapshot: snapshot store failures and mismatches
//   - cli: command-line usage errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "E200") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("E160").
//	    WithLocation("fixtures/rings.yaml", 12, 5).
//	    WithSource(src).
//	    WithSuggestion("children must be a list of nodes")
//
//	fmt.Println(err.Format())
package errors
