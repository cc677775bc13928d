// Package api contains the core building blocks used by the onboard step
// workflow engine. It provides the data model for onboarding sessions,
// the validation result contract, signature artifacts, and the Observer
// interface used for logging and metrics.
//
// Most users interact with the higher-level onboard package, which re-exports
// selected types and helpers from this package. The api package is intended
// for advanced use cases, custom integrations, or contributors extending the
// engine itself.
//
// # Data Model
//
// The package centers around a small set of records:
//
//   - StepDefinition / WizardDefinition: the immutable wizard configuration,
//     including per-step prerequisites, signature requirements, and the
//     assistance sub-flows a step offers.
//   - StepProgress / WorkflowSession: one employee's durable progress
//     through the wizard. Sessions are single-writer and reconstructable
//     from whatever was persisted, so an onboarding run survives reloads
//     and device changes.
//   - SignatureArtifact: the attestation captured when a step that requires
//     signing is finalized. Artifacts are immutable; editing a signed step
//     destroys the artifact.
//
// # Validation
//
// Validators are pure functions over a step's expected data shape. They
// never panic or return Go errors for bad input: every problem is reported
// as a field-scoped or step-level message in a Result, so callers can render
// inline feedback and block step advancement without exception handling.
//
// # Observability
//
// The Observer interface reports session, step, auto-save and document
// generation events. Ready-made implementations are provided for structured
// logging (log/slog) and basic in-memory metrics, along with a composite
// helper to combine several observers.
package api
