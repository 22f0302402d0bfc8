// Package planner expands a conversion request into the ordered list of
// atomic jobs a batch will execute.
//
// Planning is side-effect free: it resolves sequences, computes and
// collision-checks output paths, and clamps dimensions, but never creates
// directories or spawns subprocesses. Request problems surface as a
// *PlanError before any external work starts.
package planner
