// Package vpype drives the vpype command-line tool as a subprocess.
//
// vpype does all the geometry work (merging, simplification, sorting,
// occlusion, layout, G-code emission). This package only prepares its
// inputs and collects its outputs:
//
//  1. [NewWorkspace] creates a temporary directory owned by one invocation.
//  2. [Materialize] writes the input document (a path or raw SVG text) into it.
//     [MaterializeFor] does the same but honors node.WithContentOnly.
//  3. [Build] assembles the ordered verb pipeline from [Options].
//  4. [Tool.Run] runs vpype synchronously and captures both streams.
//  5. [ReadOutput] returns the generated file or reports why it is missing.
//
// [Tool.Process] strings the steps together and guarantees the workspace is
// removed on every return path.
//
// # Errors
//
// Failures are reported as typed errors carrying the captured diagnostics:
// [ToolNotFoundError], [ExternalToolError], [OutputMissingError] and
// [ScriptImportError]. Each exposes Code() for use with pkg/errors.
package vpype
