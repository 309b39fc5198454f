// Package resolver determines execution order within one workflow's step
// graph and exposes safe parallelism.
//
// Readiness is a local question (are this step's dependencies all
// completed?) answered fail-closed: a dependency ID that names no step makes
// the step not ready rather than vacuously satisfied. The wave partition is
// the global question: a breadth-first topological split of the incomplete
// steps into groups whose members are mutually independent by construction.
// A round that admits no new wave while steps remain means the graph has a
// cycle or an unsatisfiable dependency, which is surfaced as an error
// instead of a partial partition.
package resolver
