// Command dashgrid runs the dashgrid layout engine as an HTTP API, an MCP
// server or a terminal dashboard, and manages persisted layouts.
package main

func main() {
	Execute()
}
