// Package journal persists scheduling decisions so "what did the daemon
// do last night" can be answered after the fact.
//
// It currently supports:
//   - Block starts and their computed end time
//   - Install/uninstall of the launchd job
//   - Skipped passes and errors
package journal
