// Package cluster defines the wire protocol for rangefan's distributed
// range computation system: the messages exchanged between the
// coordinator, its workers, and the operator CLI, plus small JSON/HTTP
// helpers shared by all three binaries.
//
// # Overview
//
// Rangefan follows a hub-and-spoke model. A single coordinator accepts
// numeric-range work requests, splits each request into contiguous
// chunks, and fans the chunks out to a dynamically changing pool of
// worker processes. Workers attach themselves at runtime and results
// flow back asynchronously.
//
//	              ┌──────────────┐
//	              │ Coordinator  │
//	              │              │
//	              │ - Pool       │
//	              │ - Tracker    │
//	              │ - Death-watch│
//	              └──────┬───────┘
//	                     │
//	      ┌──────────────┼──────────────┐
//	      │              │              │
//	┌─────▼─────┐ ┌─────▼─────┐ ┌─────▼─────┐
//	│ Worker 1  │ │ Worker 2  │ │ Worker 3  │
//	│           │ │           │ │           │
//	│ /compute  │ │ /compute  │ │ /compute  │
//	│ /health   │ │ /health   │ │ /health   │
//	└───────────┘ └───────────┘ └───────────┘
//
// # Message Flow
//
// A worker POSTs RegisterRequest to the coordinator's /register endpoint
// when it starts. The coordinator then includes it in round-robin chunk
// dispatch and begins polling its /health endpoint.
//
// An operator POSTs RangeRequest to /ranges. The coordinator partitions
// the range into one ComputeChunk per currently attached worker and
// POSTs each chunk to a worker's /compute endpoint, fire-and-forget.
//
// A worker POSTs ChunkResult to the coordinator's /results endpoint when
// it finishes a chunk. Results arrive in any order, interleaved across
// requests and workers.
//
// Once every chunk of a request has been answered the coordinator hands
// a ResultBatch to its result sink. A POST to /drain announces that no
// further ranges will arrive; the coordinator stops as soon as all
// outstanding chunks have completed.
//
// # Delivery Assumptions
//
// The helpers here ride on plain HTTP: delivery is reliable and ordered
// per sender/receiver pair, and nothing more. There is no retry layer
// and no exactly-once guarantee. A chunk sent to a worker that dies
// before replying is permanently lost; the coordinator learns about the
// death through its health monitor and shrinks the pool.
package cluster
