// Package output encodes density profiles as CSV tables and writes them to
// a pluggable sink.
//
// A table has the header "i,rho" followed by one row per site, numbered
// from 1. Tables are named after the sweep case, the lane and the varied
// boundary rate rounded to two decimals, for example
// case_a__laneA__param_alpha_0.30.csv.
//
// Three sinks are provided: a local directory written with temp-file and
// rename, an S3-compatible bucket, and an in-memory map for tests.
package output
