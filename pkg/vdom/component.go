package vdom

// Component is anything that renders to a single VNode.
type Component interface {
	Render() *VNode
}

// BeforeRenderer is implemented by components with a pre-render hook.
type BeforeRenderer interface {
	OnBeforeRender()
}

// AfterRenderer is implemented by components that want the mounted VNode
// once every reference handle is resolved.
type AfterRenderer interface {
	OnAfterRender(v *VNode)
}

// Destroyer is implemented by components that release resources, such as
// reactive subscriptions, when torn down.
type Destroyer interface {
	Destroy()
}

// Factory instantiates a component from its props.
type Factory func(props Props) (Component, error)

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode {
	return f.render()
}

// Func returns a factory for a component that ignores its props.
func Func(render func() *VNode) Factory {
	return func(Props) (Component, error) {
		return &FuncComponent{render: render}, nil
	}
}

// Static returns a factory that always yields c.
func Static(c Component) Factory {
	return func(Props) (Component, error) { return c, nil }
}

// C describes a component instantiation. Arguments are bindings (Binding,
// []Binding or Props); other arguments are ignored.
func C(factory Factory, args ...any) *VNode {
	v := &VNode{Kind: KindComponent, Factory: factory}
	for _, arg := range args {
		v.addProps(arg)
	}
	return v
}
