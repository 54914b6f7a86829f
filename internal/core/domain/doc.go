// Package domain defines the core business entities for kyc-onboard.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Client: An individual or business applying for an account
//   - RiskAssessment: A point-weighted risk score with its factors
//   - InvestigationPlan: The tasks and utilities selected for a client
//   - EvidenceRecord: An atomic finding produced by a task or utility
//   - Checkpoint: The persisted state of a pipeline run
//   - ReviewIntelligence: Deterministic analysis handed to the reviewer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
