// Package reactive provides the observable value cell used for live
// bindings.
//
// A Cell holds a value and an ordered list of subscribers. Set stores a new
// value and, if it differs from the old one, calls every subscriber in
// subscription order before returning:
//
//	opacity := reactive.New(0.0)
//	stop := opacity.Subscribe(func(v float64) {
//	    el.Style().SetProperty("opacity", dom.FormatValue(v))
//	}, true)
//	defer stop()
//
//	opacity.Set(0.5) // subscriber runs synchronously
//
// Map derives a read-only cell that follows its source:
//
//	label := reactive.Map(altitude, func(ft int) string { return strconv.Itoa(ft) + " ft" })
//
// Builders bind values without knowing their type through the Source
// interface, which every Cell and Derived implements.
//
// # Panics
//
// A panicking subscriber never prevents the remaining subscribers from
// running. With PanicLog (the default) the panic is logged and dropped. With
// PanicRethrow the first recovered value is re-panicked once every
// subscriber has run.
package reactive
