// Package onboard provides an embeddable step-wizard engine for employee
// onboarding flows.
//
// Onboard is designed for backend services that collect compliance paperwork
// (identity details, tax withholding, payroll enrollment, benefit elections)
// through a gated, resumable wizard. It runs fully in Go, supports multiple
// persistence backends, and integrates cleanly into existing codebases.
//
// # Core Concepts
//
// The Onboard programming model is intentionally small and idiomatic:
//
//  1. Portal
//  2. Controller
//  3. WizardBuilder
//  4. Validator
//  5. Generator
//
// These components form a complete onboarding system with per-step state
// tracking, durable drafts (when using persistent backends), and a clear
// mental model.
//
// # Portal
//
// The Portal owns the persistence backend and hands out per-employee
// Controllers. It provides APIs to:
//   - start a new onboarding session
//   - resume a session from its persisted snapshots
//   - check whether an employee has a session at all
//
// Portals can be backed by different storage systems:
//
//   - In-memory (non-durable, best for tests)
//   - SQLite (embedded durability)
//   - Redis layered over SQLite (local cache plus durable remote)
//
// # Controller
//
// A Controller drives one employee through the wizard. It enforces step
// gating, runs field validation on submit, debounces draft auto-saves, and
// performs the review / sign / complete handshake for each step.
//
// Controllers serialize step transitions: while one transition is being
// persisted, further transition requests fail with ErrTransitionInFlight and
// callers are expected to re-request.
//
// # WizardBuilder
//
// WizardBuilder provides the ergonomic, declarative API used to define
// wizards:
//
//	onboard.NewWizard("standard").
//	    Step("personal-info", "Personal Information").
//	    Step("w4", "Withholding Certificate",
//	        onboard.After("personal-info"),
//	        onboard.Signed(),
//	    ).
//	    Definition()
//
// DefaultOnboardingWizard returns the standard five-step compliance wizard
// used when no definition is configured.
//
// # Validator
//
// A Validator checks one step's form data and reports per-field errors:
//
//	type Validator interface {
//	    Validate(data FormData) Result
//	}
//
// The validate package ships validators for every standard step; custom steps
// register their own through Config.Validators.
//
// # Generator
//
// The docgen Generator maps collected form data onto PDF form templates,
// producing filled documents plus diagnostics for any template fields that
// could not be populated. Steps backed by a template will not complete while
// the document is missing required fields.
//
// # Summary
//
// Onboard's goal is to give Go developers an onboarding engine that feels
// like Go: easy to embed, easy to test, deterministic, and without
// operational overhead. Portals manage sessions, Controllers drive steps,
// WizardBuilder defines flows, Validators contain field rules, and the
// Generator turns collected data into signed paperwork.
package onboard
