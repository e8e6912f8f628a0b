/*
Package observability provides tools for monitoring the dashgrid engine.

It turns lifecycle hooks into Prometheus metrics and OpenTelemetry spans. Both
plug into the engine through dashgrid.WithLifecycleHooks and can be combined
with each other and with user hooks.
*/
package observability
