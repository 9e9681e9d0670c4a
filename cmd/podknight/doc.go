// Package main hosts the podknight CLI entrypoint and command graph.
//
// Commands resolve configuration once, then hand a fully built request to
// the episode orchestrator. Planning, preflight checks, run history and
// notification tests are surfaced as separate subcommands so an episode can
// be inspected before anything is encoded.
//
// Keep this package thin: behavior belongs in the internal packages, and
// commands here only translate flags into their inputs and render results.
package main
