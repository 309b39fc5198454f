// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package model defines the domain types shared by every scheduling
// component: work items and their priorities, the scheduling-relevant
// projection of an agent, workflow steps with their dependency edges, and
// the decision record the scheduler emits.
//
// The package is deliberately free of behavior beyond small constructors
// and parsers. Matching, ranking and ordering logic lives in the components
// that own it; keeping the types inert lets every component depend on them
// without creating import cycles.
package model
