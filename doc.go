// Package graphbridge provides a synchronous client for remote RDF/SHACL
// graph stores. Calling code reads and edits a server-held graph through a
// blocking, script-like API while the network I/O runs on a dedicated
// transport worker.
//
// # Architecture
//
// The module is organized as a stack of small packages:
//
//	┌─────────────────────────────────────┐
//	│            session                  │  Handshake, prefix table,
//	│  (Open, Add, Select, Close, ...)    │  graph operations
//	└─────────────────────────────────────┘
//	           ↓ queues writes via
//	┌─────────────────────────────────────┐
//	│             batch                   │  Write batching,
//	│   (Enqueue, Flush, RequestRead)     │  flush-before-read
//	└─────────────────────────────────────┘
//	           ↓ calls through
//	┌─────────────────────────────────────┐
//	│             bridge                  │  Single-flight blocking
//	│        (Call, timeouts)             │  call protocol
//	└─────────────────────────────────────┘
//	           ↓ submits to
//	┌─────────────────────────────────────┐
//	│           transport                 │  Worker goroutine,
//	│     (Worker, HTTPDoer, NATSDoer)    │  HTTP and NATS transports
//	└─────────────────────────────────────┘
//
// Supporting packages: term (RDF term model), wire (request envelopes and
// result decoding), retry (backoff for transient transport failures),
// errors (classified errors), metric (Prometheus client metrics).
//
// # Call model
//
// Exactly one remote call is in flight at a time. A caller that invokes a
// read blocks until the worker delivers the outcome; writes are queued
// locally and flushed as one batch operation before any read, so a read
// always observes the edits that preceded it. A call that exceeds the
// configured timeout fails at the caller, but the in-flight request runs to
// completion on the worker so the connection is never left mid-exchange.
//
// # Usage
//
//	s, err := session.Open(ctx, session.Config{
//		ServerURL: "https://store.example.com",
//		DataGraph: "geo",
//	})
//	if err != nil {
//		return err
//	}
//	defer s.Close(ctx)
//
//	if err := s.Add(ctx, "ex:berlin", "rdfs:label", "Berlin"); err != nil {
//		return err
//	}
//	result, err := s.Select(ctx, `SELECT ?s WHERE { ?s rdfs:label ?l }`, nil)
//
// The graphbridge binary under cmd/graphbridge exposes the same operations
// on the command line.
package graphbridge
