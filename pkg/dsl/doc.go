/*
Package dsl provides a fluent Go builder for dashgrid layouts.

It is the programmatic alternative to a YAML config file: zones are declared in
order, each with a width and the components it starts with. Components may carry
a descriptor, in which case the built engine resolves them through a registry.

Example usage:

	b := dsl.New()

	b.Add("sidebar").Small().
		Holds("clock")

	b.Add("main").Large().
		Component(domain.ComponentDescriptor{ID: "chart", Kind: "timeseries", Title: "Traffic"})

	eng, err := b.Engine(dashgrid.WithActivation(domain.Delayed(0)))
*/
package dsl
