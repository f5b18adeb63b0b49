// Package syncer implements the reconciliation engine that decides, for
// each synchronizable unit, whether to push the local side to the vault,
// pull the vault's side down, or do nothing.
//
// ARCHITECTURE:
//
// Plan, then execute:
// Every command first computes a complete plan - one Decision per unit -
// with no side effects beyond reading both sides. The plan is rendered as
// a report for the user before anything destructive happens. Execution
// then runs all push and pull transfers concurrently; decisions are
// independent of each other, so ordering only matters at the single
// fan-in point where pulled values are written back to the local file.
//
// The core policy lives in Decide, a pure function over a sync mode and
// two optional timestamps. It is shared by variable sync and file sync;
// the planners around it contribute only unit discovery and the
// short-circuits that avoid needless transfers (identical values, and
// push-always skipping the remote read entirely).
//
// Failures during execution surface immediately and abort the remaining
// transfers, but transfers that already completed are not rolled back;
// partial application is an accepted outcome.
package syncer
