// Package phase implements the plugin execution engine: resolving configured
// plugin requests against the registry, preparing their arguments, and
// running them in order with the per-phase semantics of a container-image
// build (best-effort vs. fatal failures, single-winner build step, "auto"
// input selection).
//
// Execution is strictly sequential. Within a phase, a plugin never starts
// before the previous one returned; phases run one after another over the
// same shared workflow context. The engine never retries a failed plugin.
package phase
