// Package element builds the immutable tree descriptions that the fiber
// engine renders.
//
// An Element pairs a Type (a host tag such as "div", the reserved text tag,
// or a component) with ordered Props and a list of child Elements:
//
//	el := element.Build(element.Host("div"), []element.Prop{
//	    element.Attr("class", "card"),
//	    element.On("click", onClick),
//	},
//	    element.Build(element.Host("h1"), nil, "Hello"),
//	    "plain text becomes a text element",
//	)
//
// Elements are never mutated after Build returns. Every render produces a
// fresh tree; the reconciler diffs it against the previously committed fibers.
//
// Property values are typed (string, number, bool, listener). Properties
// whose name starts with "on" bind event listeners; all others are plain
// attributes.
package element
