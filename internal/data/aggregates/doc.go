// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// Implementations compose the table repos from internal/data/repos and own the
// transaction boundary of every lifecycle write: a job state change and the step
// recorded with it either both commit or both roll back.
package aggregates
