// Package preflight provides readiness checks for the binaries, paths and
// remote destination a run depends on.
//
// These checks run in two contexts:
//   - The orchestrator runs them as the concurrent Checklist stage before any
//     encode starts. A failed check fails the run before irreversible work.
//   - The CLI "podknight check" command runs RunAll and prints every result.
//
// Remote checks are skipped when uploads are disabled.
package preflight
