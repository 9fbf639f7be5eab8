// Package nodes implements the vpype node variants and the default registry.
//
// Every variant follows the same pattern: read typed params, materialize the
// document into a private workspace, build the vpype invocation (or a helper
// script call), run it and return the generated file as a string.
//
//	VPypeProcessor          fixed merge/simplify/sort/rotate/layout pipeline
//	VPypeExtendedProcessor  every stage individually switchable
//	VPypeGCodeGenerator     gwrite with a generated profile config
//	VPypeBorderRemover      drops frame-like closed paths via a Python script
//
// All variants also implement [node.Planner] so a host can show the exact
// command without running it.
package nodes
