// Package node defines the contract between a pipeline host and the vpype
// adapters.
//
// A [Node] declares a typed, bounded parameter [Schema] and a single entry
// point that turns resolved [Params] into one string value (a processed SVG
// document or generated G-code).
//
// The host side of the contract lives here too: [Schema.Resolve] applies
// defaults, coerces loosely typed input (JSON numbers, CLI strings, TOML
// presets) and enforces the declared min/max/choices. Adapters trust the
// values they receive and never re-validate them.
//
// # Registration
//
// A [Registry] is a plain table from class name to node, mirroring the
// class-to-display-name mapping of node-based hosts:
//
//	reg := node.NewRegistry()
//	reg.MustRegister(myNode)
//	n, err := reg.Lookup("VPypeProcessor")
package node
