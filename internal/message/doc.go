// Package message defines the immutable result record returned by the
// simulated slow service.
//
// A Message carries the work item id, the observed delay, and the payload.
// Equality, ordering, and formatting are defined explicitly at the type
// level; ordering is by ascending delay with ties broken by id, so a
// sorted sequence is fully deterministic.
package message
