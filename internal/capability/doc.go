// Package capability maintains the agent registry and answers the two
// matching questions the scheduler asks: which agents can legally perform a
// piece of work (hard filters, no partial credit), and how well a given
// agent's capability set covers a requirement (a ranking score, never used
// for admission).
//
// The skill-to-capability taxonomy is supplied at construction as plain
// data. The matcher itself contains no domain literals, so the same code
// serves deployments with entirely different skill vocabularies.
package capability
