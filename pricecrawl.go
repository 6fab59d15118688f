// Package pricecrawl provides a bounded, parallel price crawler for a single
// website. It fetches pages over plain HTTP, recognizes price expressions in
// page text and in linked PDF documents, deduplicates what it finds, and
// produces both a structured result and a numbered text corpus suitable for
// LLM post-processing.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, pdf/, sqlite/).
package pricecrawl
