// Package inbound decodes the claim-submission wire envelope, runs the
// core pipeline, and encodes the response shapes.
//
// Structural decode failures short-circuit before the pipeline: they
// produce a 400 with a distinct error code and still emit exactly one
// audit record, with an empty file list.
package inbound
