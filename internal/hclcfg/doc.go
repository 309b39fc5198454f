// Package hclcfg loads a deployment definition from HCL files: scheduler
// settings, the skill-to-capability taxonomy, the agent roster, and the
// workflow step graphs.
//
// A deployment may be split across many files in a directory tree; the
// loader discovers every .hcl file recursively and merges the blocks into
// one Deployment. All domain vocabulary (skills, capabilities, levels)
// lives in these files, never in code.
package hclcfg
