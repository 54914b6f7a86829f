// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CaseStore: Checkpoint and stage artifact persistence
//   - Investigator: Runs the investigative tasks (LLM research or offline screening)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - SynthesisService: Without it, every run escalates for manual review.
//   - LLMService: Without it, research uses the offline screening list.
//   - EvidenceSink: Durable evidence ledger.
//   - CaseLog: Cross-case log. Without it, batch analytics reports no patterns.
//   - MetricsRecorder: Per-case metrics textfile.
//   - ReviewAssistant: Answers officer questions during review.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
