// Package research implements the investigative and synthesis collaborators.
//
// Investigator asks a language model to research each task using the prompt
// templates from a PromptStore and parses the fenced JSON answer into typed
// results. Unparseable answers fall back to conservative defaults that leave
// the finding for manual review. Offline screens against a local screening
// list and the built-in country lists when no model is configured.
package research
