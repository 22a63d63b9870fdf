package vdom

import "github.com/vango-dev/gaugekit/pkg/dom"

// On attaches a DOM event listener for the named event.
func On(event string, handler dom.Listener) Binding {
	return Binding{Kind: BindEvent, Name: event, Handler: handler}
}

// OnClick handles click events.
func OnClick(handler dom.Listener) Binding { return On("click", handler) }

// OnInput handles input events.
func OnInput(handler dom.Listener) Binding { return On("input", handler) }

// OnChange handles change events.
func OnChange(handler dom.Listener) Binding { return On("change", handler) }

// OnMouseDown handles mousedown events.
func OnMouseDown(handler dom.Listener) Binding { return On("mousedown", handler) }

// OnMouseUp handles mouseup events.
func OnMouseUp(handler dom.Listener) Binding { return On("mouseup", handler) }

// OnWheel handles wheel events, used by knob-style instruments.
func OnWheel(handler dom.Listener) Binding { return On("wheel", handler) }

// OnKeyDown handles keydown events.
func OnKeyDown(handler dom.Listener) Binding { return On("keydown", handler) }
