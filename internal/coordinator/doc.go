// Package coordinator implements the dispatch core of rangefan: it
// partitions numeric-range work requests into contiguous chunks, fans
// the chunks out to a dynamically changing pool of workers, tracks
// partial completion per request under out-of-order completions, and
// drives a two-phase shutdown that never terminates while work is still
// pending.
//
// # Overview
//
// The coordinator is the control plane for a range computation cluster.
// Workers attach and leave while requests are in flight; every request
// is split into one chunk per worker known at dispatch time and the
// chunks are spread round-robin. Results come back asynchronously, in
// any order, interleaved across requests and workers.
//
// # Architecture
//
// The core is a composition of four small parts driven by one event
// loop:
//
//	┌─────────────────────────────────────┐
//	│           COORDINATOR               │
//	├─────────────────────────────────────┤
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Partitioner (Split)        │   │
//	│  │   - range → n chunks         │   │
//	│  │   - last chunk absorbs rest  │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Pool                       │   │
//	│  │   - ordered worker handles   │   │
//	│  │   - round-robin cursor       │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Tracker                    │   │
//	│  │   - id → pending chunks      │   │
//	│  │   - shutdown gate            │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Lifecycle                  │   │
//	│  │   - Accepting → Draining     │   │
//	│  │     → Stopped                │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	└─────────────────────────────────────┘
//
// # Concurrency Model
//
// One goroutine (Run) consumes a single ordered event channel. Every
// handler runs to completion before the next event is looked at, so
// Pool, Tracker, Lifecycle, and the accumulated result log need no
// locks: they are owned by that goroutine and nothing else may touch
// them. Handlers never block: sending a chunk to a worker is
// fire-and-forget, and the answer re-enters the queue later as a
// ChunkResult event.
//
// The one ordering guarantee that matters: a ChunkResult for request X
// is never processed before SetPending(X, …) has run, because dispatch
// happens after SetPending inside the same handler and a reply can only
// arrive afterwards.
//
// # Failure Model
//
// A worker that reports a processing fault is terminated (removed from
// the pool, not restarted) and its chunk is permanently lost. A fault
// category outside the classification table escalates and takes the
// whole coordinator down. Unreachable workers are detected by the
// DeathWatch and handled as pool shrinkage. There is no chunk timeout:
// a worker that never replies leaves its request permanently
// undecremented, and a draining coordinator waiting on such a request
// never stops. That gap is inherited deliberately and asserted by the
// tests rather than papered over.
package coordinator
