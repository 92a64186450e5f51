/*
Package domain contains the core domain models of the Strata annotation engine.

It defines the entities the orchestrator moves around: the Document being annotated,
the named Views attached to it, the structural Tokenization produced by a builder, and
the error kinds raised while registering, resolving and executing annotators. This package
is kept free of I/O and persistence, following Hexagonal Architecture principles.

# Key Entities

  - Document: raw text, structural tokenization and the set of computed views for one text.
  - View: one named, opaque annotation layer tagged with its producer and generation.
  - Tokenization: token strings, byte offsets and sentence boundaries.
  - RuntimeConfig: per-call options passed through to annotators without inspection.
  - LifecycleHooks: callbacks fired by the executor for logging and metrics sinks.
*/
package domain
