// Package vector defines the vector index contract consumed by the hybrid
// scoring pipeline, an in-process brute-force cosine index for embedded
// deployments and tests, and a circuit-breaker wrapper for remote indexes.
package vector
