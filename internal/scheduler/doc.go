// Package scheduler composes the capability matcher, the load balancer and
// the dependency resolver into assignment decisions, and owns the priority
// arithmetic.
//
// # Decision pipeline
//
// Placing one work item is a two-stage funnel:
//
//  1. The matcher applies the hard filters (capabilities, skills, level) and
//     yields the qualified agents, best capability coverage first.
//  2. The balancer filters those to the agents that can accept work right
//     now and orders them by ascending load.
//
// The head of the ranked list is the assignment; the next few entries are
// recorded as alternatives. The two empty-result cases are distinct
// outcomes: no agent qualifies at all (a roster problem, ErrNoQualifiedAgent)
// versus every qualified agent being full or unhealthy (transient
// contention, ErrNoAvailableAgent, recoverable on a later cycle).
//
// # Cycles
//
// RunCycle is the batch entry point: it gathers ready steps across active
// workflows, scores them once against a single clock read, and places them
// in strictly descending score order. Assignments made earlier in a cycle
// are counted as provisional load for later candidates through a cycle-local
// reservations map, which is discarded when the cycle ends. The scheduler
// never writes workflow or queue state; it is a pure decision function that
// is safe to call every cycle.
package scheduler
