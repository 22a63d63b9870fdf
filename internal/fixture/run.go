package fixture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/internal/snapshot"
	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/harness"
	"github.com/vango-dev/gaugekit/pkg/reconcile"
)

// Runner renders fixtures and checks their expectations.
type Runner struct {
	// Options are applied to every environment before the fixture's own
	// harness settings.
	Options []harness.Option

	// Snapshots stores HTML for fixtures that name a snapshot. Nil skips
	// snapshot comparison.
	Snapshots snapshot.Store

	// Update overwrites differing snapshots instead of failing.
	Update bool
}

// Result is the outcome of running one fixture.
type Result struct {
	Name     string           `json:"name"`
	HTML     string           `json:"html"`
	Mount    string           `json:"mount,omitempty"`
	Refs     []RefResult      `json:"refs"`
	Summary  string           `json:"summary"`
	Snapshot string           `json:"snapshot,omitempty"`
	Failures []string         `json:"failures,omitempty"`
	Error    string           `json:"error,omitempty"`
	Duration time.Duration    `json:"duration"`
	Report   reconcile.Report `json:"-"`

	renderErr error
}

// RefResult is how one named ref resolved.
type RefResult struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
	Node     string `json:"node,omitempty"`
}

// Passed reports whether the fixture rendered and met every expectation.
func (r *Result) Passed() bool { return r.renderErr == nil && len(r.Failures) == 0 }

// Err returns the render error, or an E161 error listing the failed
// expectations, or nil.
func (r *Result) Err() error {
	if r.renderErr != nil {
		return r.renderErr
	}
	if len(r.Failures) == 0 {
		return nil
	}
	return errors.New("E161").WithDetail(r.Name + ": " + strings.Join(r.Failures, "; "))
}

// Run renders f in a fresh environment and checks its expectations.
func (rn *Runner) Run(ctx context.Context, f *Fixture) *Result {
	return rn.RunWith(ctx, f)
}

// RunWith is Run with extra options applied after the fixture's own harness
// settings.
func (rn *Runner) RunWith(ctx context.Context, f *Fixture, extra ...harness.Option) *Result {
	start := time.Now()
	res := &Result{Name: f.Name}
	defer func() { res.Duration = time.Since(start) }()

	opts, err := f.harnessOptions()
	if err != nil {
		res.fail(err)
		return res
	}
	all := append([]harness.Option{harness.WithName(f.Name)}, rn.Options...)
	all = append(append(all, opts...), extra...)
	env := harness.New(all...)
	defer env.Close()

	tree, refs := f.Build()
	m, err := env.Render(ctx, tree)
	if m == nil {
		res.fail(err)
		return res
	}
	if err != nil {
		res.fail(err)
	}
	res.HTML = env.HTML()
	res.Report = m.Report
	res.Summary = m.Report.String()
	res.Mount = m.Mount.Strategy.String()

	for _, name := range f.RefNames() {
		r := refs[name]
		rr := RefResult{Name: name, Strategy: reconcile.Unresolved.String()}
		if resolution, ok := m.Report.Lookup(r); ok {
			rr.Strategy = resolution.Strategy.String()
		}
		if n := r.Node(); n != nil {
			rr.Node = describe(n)
		}
		res.Refs = append(res.Refs, rr)
	}

	for _, name := range sortedKeys(f.Expect.Refs) {
		res.checkRef(name, f.Expect.Refs[name], refs[name].Node(), env.Container())
	}
	if f.Expect.Unresolved != nil {
		if got := len(m.Report.Unresolved()); got != *f.Expect.Unresolved {
			res.Failures = append(res.Failures, fmt.Sprintf("%d unresolved refs, want %d", got, *f.Expect.Unresolved))
		}
	}

	if f.Expect.Snapshot != "" && rn.Snapshots != nil {
		out, err := snapshot.Compare(ctx, rn.Snapshots, f.Expect.Snapshot, []byte(res.HTML), rn.Update)
		res.Snapshot = out.String()
		if err != nil {
			res.Failures = append(res.Failures, "snapshot "+errors.Summary(err))
		}
	}
	return res
}

func (r *Result) fail(err error) {
	r.renderErr = err
	r.Error = errors.Summary(err)
}

func (r *Result) checkRef(name string, want RefExpect, n *dom.Node, container *dom.Node) {
	if want.Unbound {
		if n != nil {
			r.Failures = append(r.Failures, fmt.Sprintf("ref %s bound to %s, want none", name, describe(n)))
		}
		return
	}
	if n == nil {
		r.Failures = append(r.Failures, "ref "+name+" is unresolved")
		return
	}
	if !container.Contains(n) {
		r.Failures = append(r.Failures, "ref "+name+" points outside the container")
	}
	if want.Selector != "" {
		ok, err := n.Matches(want.Selector)
		switch {
		case err != nil:
			r.Failures = append(r.Failures, fmt.Sprintf("ref %s: bad selector %q: %v", name, want.Selector, err))
		case !ok:
			r.Failures = append(r.Failures, fmt.Sprintf("ref %s bound to %s, want %s", name, describe(n), want.Selector))
		}
	}
	if want.Strategy != "" {
		for _, rr := range r.Refs {
			if rr.Name == name && rr.Strategy != want.Strategy {
				r.Failures = append(r.Failures, fmt.Sprintf("ref %s resolved by %s, want %s", name, rr.Strategy, want.Strategy))
			}
		}
	}
	for _, attr := range sortedKeys(want.Attrs) {
		if got, ok := n.Attribute(attr); !ok || got != want.Attrs[attr] {
			r.Failures = append(r.Failures, fmt.Sprintf("ref %s: %s = %q, want %q", name, attr, got, want.Attrs[attr]))
		}
	}
}

// describe renders an element's start tag, e.g. <circle class="ring">.
func describe(n *dom.Node) string {
	var b strings.Builder
	b.WriteString("<" + n.LocalName())
	for _, a := range n.Attributes() {
		fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
	}
	b.WriteString(">")
	return b.String()
}

// harnessOptions translates the fixture's harness block.
func (f *Fixture) harnessOptions() ([]harness.Option, error) {
	h := f.Harness
	var opts []harness.Option
	if h.SeparateBuildDocument != nil {
		v := *h.SeparateBuildDocument
		opts = append(opts, func(c *harness.Config) { c.SeparateBuildDocument = v })
	}
	if h.Adopt != "" {
		p, err := dom.ParseAdoptPolicy(h.Adopt)
		if err != nil {
			return nil, errors.New("E160").WithDetail(err.Error())
		}
		opts = append(opts, harness.WithAdoptPolicy(p))
	}
	if h.StrictAppend != nil {
		v := *h.StrictAppend
		opts = append(opts, func(c *harness.Config) { c.StrictAppend = v })
	}
	if h.NoImport {
		opts = append(opts, harness.WithoutImport())
	}
	if h.AppendFirst {
		opts = append(opts, harness.WithAppendFirst())
	}
	return opts, nil
}
