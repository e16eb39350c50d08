// Package preflight provides readiness checks for the external encoder and
// the filesystem paths clipdeck writes to.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs every failing check as a
//     warning; recordings are still accepted.
//   - The CLI "clipdeck status" command renders RunAll and CheckSystemDeps
//     alongside the daemon state.
package preflight
