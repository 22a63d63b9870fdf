// Package fixture loads YAML fixture files and checks them against the
// render pipeline.
//
// A fixture declares a tree of elements, the harness settings to render
// it under, and what each named reference should resolve to:
//
//	name: range-rings
//	harness:
//	  separateBuildDocument: true
//	  adopt: unavailable
//	tree:
//	  tag: svg
//	  children:
//	    - tag: circle
//	      class: ring
//	      data: {range: "25"}
//	      ref: r25
//	expect:
//	  refs:
//	    r25:
//	      selector: circle[data-range="25"]
//	      strategy: data
//	  unresolved: 0
//
// Parse errors carry the file and line of the offending YAML.
package fixture
