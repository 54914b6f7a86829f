// Package utilities holds the deterministic compliance utilities run after the
// investigative tasks. Each utility is a pure function of the client, the
// investigation plan and the results gathered so far. Utilities never fail:
// missing upstream data degrades the result instead.
package utilities
