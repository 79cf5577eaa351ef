// Package notation groups the notation-rewriting pipeline: delimiter
// matching, structural extraction, the rule table, the rewrite engine,
// context classification and the timeout guard.
//
// Every stage is single-threaded and deterministic. Rule application order
// decides the output, so nothing in these packages runs rules concurrently.
package notation
