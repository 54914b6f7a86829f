// Package services holds the onboarding core: risk scoring, investigation
// planning, the staged pipeline, review intelligence and the review session.
//
// Services depend only on the ports in internal/core/ports. They make no
// network calls of their own; research and synthesis go through driven ports.
package services
