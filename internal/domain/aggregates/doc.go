// Package aggregates defines domain-facing aggregate contracts.
//
// These contracts avoid persistence/transport implementation details and represent
// the write boundaries of a batch job: opening a job, appending audit steps and
// moving the job through its lifecycle states.
package aggregates
