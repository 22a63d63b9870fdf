package harness

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"

	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/pkg/bridge"
	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reconcile"
	"github.com/vango-dev/gaugekit/pkg/render"
	"github.com/vango-dev/gaugekit/pkg/simvar"
	"github.com/vango-dev/gaugekit/pkg/telemetry"
	"github.com/vango-dev/gaugekit/pkg/vdom"
)

// Env is an isolated DOM environment for rendering components. Envs share
// nothing; create one per test.
type Env struct {
	id     string
	config Config

	mountDoc  *dom.Document
	buildDoc  *dom.Document
	container *dom.Node
	engine    *reconcile.Engine

	mounted []*Mounted
	closed  bool
}

// New creates an environment with an empty container.
func New(opts ...Option) *Env {
	var config Config
	for _, opt := range opts {
		opt(&config)
	}

	e := &Env{id: ulid.Make().String()}
	if config.Name == "" {
		config.Name = e.id
	}
	if config.Logger == nil {
		config.Logger = defaultLogger()
	}
	config.Logger = config.Logger.With("env", config.Name)
	if config.Telemetry == nil {
		config.Telemetry = telemetry.Discard()
	}
	if config.SimVars == nil {
		config.SimVars = simvar.New(simvar.WithLogger(config.Logger), simvar.WithCellOptions(config.CellOptions...))
	}
	if config.Bridge == nil {
		config.Bridge = bridge.New(bridge.WithLogger(config.Logger))
	}
	e.config = config

	tel := config.Telemetry
	e.engine = reconcile.New(
		reconcile.WithLogger(config.Logger),
		reconcile.WithObserver(func(r reconcile.Resolution) { tel.RecordRef(r.Strategy.String()) }),
	)
	e.setup()
	tel.EnvOpened()
	return e
}

// setup creates fresh documents and an empty container.
func (e *Env) setup() {
	opts := []dom.Option{
		dom.WithName(e.config.Name + "/mount"),
		dom.WithAdoptPolicy(e.config.Adopt),
	}
	if e.config.StrictAppend {
		opts = append(opts, dom.WithStrictAppend())
	}
	if e.config.NoImport {
		opts = append(opts, dom.WithoutImport())
	}
	e.mountDoc = dom.NewDocument(opts...)
	e.buildDoc = e.mountDoc
	if e.config.SeparateBuildDocument {
		e.buildDoc = dom.NewDocument(dom.WithName(e.config.Name + "/build"))
	}

	root, _ := e.mountDoc.CreateElement("div")
	_ = root.SetAttribute("id", "root")
	_, _ = e.mountDoc.Body().AppendChild(root)
	e.container = root
}

// ID returns the environment's unique id.
func (e *Env) ID() string { return e.id }

// Document returns the document owning the container.
func (e *Env) Document() *dom.Document { return e.mountDoc }

// BuildDocument returns the document trees are built in.
func (e *Env) BuildDocument() *dom.Document { return e.buildDoc }

// Container returns the mount container.
func (e *Env) Container() *dom.Node { return e.container }

// SimVars returns the simulator variable store.
func (e *Env) SimVars() *simvar.Store { return e.config.SimVars }

// Bridge returns the call bridge.
func (e *Env) Bridge() *bridge.Bridge { return e.config.Bridge }

// HTML returns the container's inner HTML.
func (e *Env) HTML() string { return e.container.InnerHTML() }

// Render builds v, mounts it into the container, reconciles reference
// handles and then runs every component's OnAfterRender, children first.
// When building or mounting fails nothing is left in the container.
func (e *Env) Render(ctx context.Context, v *vdom.VNode) (m *Mounted, err error) {
	if e.closed {
		return nil, fmt.Errorf("harness: env %s is closed", e.config.Name)
	}
	tel := e.config.Telemetry
	log := e.config.Logger

	ctx, stage := tel.StartStage(ctx, "render", attribute.String("gaugekit.env", e.config.Name))
	defer func() {
		tel.RecordRender(err)
		stage.End(err)
	}()

	if err := e.build(ctx, v); err != nil {
		vdom.Release(v)
		return nil, err
	}
	sites := reconcile.Collect(v)

	res, err := e.mount(ctx, v)
	if err != nil {
		vdom.Release(v)
		return nil, err
	}

	_, rs := tel.StartStage(ctx, "reconcile", attribute.Int("gaugekit.refs", len(sites)))
	report := e.engine.Reconcile(v, e.container, sites)
	rs.SetAttributes(attribute.Int("gaugekit.unresolved", report.Count(reconcile.Unresolved)))
	rs.End(nil)

	m = &Mounted{Tree: v, Root: res.Root, Mount: res, Report: report, env: e}
	e.mounted = append(e.mounted, m)

	if err := afterRender(v); err != nil {
		return m, err
	}
	log.Debug("rendered",
		"root", res.Root.NodeName(),
		"strategy", res.Strategy.String(),
		"refs", report.String())
	return m, nil
}

// RenderComponent renders the component produced by factory with the given
// bindings.
func (e *Env) RenderComponent(ctx context.Context, factory vdom.Factory, args ...any) (*Mounted, error) {
	return e.Render(ctx, vdom.C(factory, args...))
}

func (e *Env) build(ctx context.Context, v *vdom.VNode) error {
	_, stage := e.config.Telemetry.StartStage(ctx, "build")
	b := render.NewBuilder(e.buildDoc, render.WithLogger(e.config.Logger))
	_, err := b.Build(v)
	e.config.Telemetry.RecordNodes(b.NodesBuilt())
	stage.SetAttributes(attribute.Int("gaugekit.nodes", b.NodesBuilt()))
	stage.End(err)
	return err
}

func (e *Env) mount(ctx context.Context, v *vdom.VNode) (*render.MountResult, error) {
	_, stage := e.config.Telemetry.StartStage(ctx, "mount")
	opts := []render.MountOption{render.WithMountLogger(e.config.Logger)}
	if e.config.AppendFirst {
		opts = append(opts, render.WithAppendFirst())
	}
	res, err := render.NewMounter(opts...).Mount(v, e.container)
	if err == nil {
		e.config.Telemetry.RecordMount(res.Strategy.String())
		stage.SetAttributes(
			attribute.String("gaugekit.strategy", res.Strategy.String()),
			attribute.Int("gaugekit.restamped", res.Restamped),
		)
	}
	stage.End(err)
	return res, err
}

// afterRender calls OnAfterRender on every component in v, children before
// parents.
func afterRender(v *vdom.VNode) error {
	if v == nil {
		return nil
	}
	if v.Kind == vdom.KindComponent {
		if err := afterRender(v.Rendered); err != nil {
			return err
		}
		hook, ok := v.Instance.(vdom.AfterRenderer)
		if !ok {
			return nil
		}
		return protect(fmt.Sprintf("%T.OnAfterRender", v.Instance), func() { hook.OnAfterRender(v) })
	}
	for _, c := range v.Children {
		if err := afterRender(c); err != nil {
			return err
		}
	}
	return nil
}

func protect(what string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gkerrors.New("E202").WithDetail(fmt.Sprintf("%s panicked: %v", what, r))
		}
	}()
	fn()
	return nil
}

// Reset destroys everything rendered so far and replaces the documents and
// container with fresh ones.
func (e *Env) Reset() {
	e.destroyAll()
	e.setup()
}

// Close destroys everything rendered and marks the environment unusable.
func (e *Env) Close() {
	if e.closed {
		return
	}
	e.destroyAll()
	e.closed = true
	e.config.Telemetry.EnvClosed()
}

func (e *Env) destroyAll() {
	for i := len(e.mounted) - 1; i >= 0; i-- {
		e.mounted[i].Destroy()
	}
	e.mounted = nil
}

// Query returns the first element in the container matching sel.
func (e *Env) Query(sel string) (*dom.Node, error) {
	return e.container.QuerySelector(sel)
}

// QueryAll returns every element in the container matching sel.
func (e *Env) QueryAll(sel string) ([]*dom.Node, error) {
	return e.container.QuerySelectorAll(sel)
}
