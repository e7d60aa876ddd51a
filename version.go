// Package quill holds module-wide metadata.
package quill

// Version is the engine version embedded in the CLI and stamped into
// generated file headers.
const Version = "0.3.0"
