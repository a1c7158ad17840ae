// Package ragdoc prepares crawled documentation pages for retrieval-augmented
// question answering. It normalizes HTML into heading-annotated markdown,
// segments pages into overlapping chunks with heading provenance, and
// assembles budget-bounded context from nearest-neighbor search results.
//
// This package contains domain types, interfaces and the pure segmentation
// and ranking algorithms following Ben Johnson's Standard Package Layout.
// Implementations live in subdirectories named after their primary
// dependency (e.g., goquery/, sqlite/, gemini/).
package ragdoc
