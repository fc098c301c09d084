// Package buffer allocates the three benchmark arrays.
//
// Each array starts on a 64-byte (cache line) boundary so that the
// non-temporal store kernels can write whole lines. Memory comes from one of
// three pools: the Go heap, an anonymous mapping, or an anonymous mapping
// advised to use transparent huge pages. The huge page pool falls back to the
// heap when the platform refuses it, and the Set records why.
package buffer
