/*
Package ports defines the driving and driven ports (interfaces) of the Strata engine.

These interfaces decouple the orchestration core from concrete annotators, tokenizers,
storage backends and lock providers.

# Key Interfaces

  - Annotator: produces exactly one named view, declaring the views it needs first.
  - TokenizationBuilder: turns raw text (and an optional tokenization) into a Document.
  - DocumentStore: persists annotated documents for serving layers.
  - DistributedLocker: provides distributed locking for documents shared between replicas.
*/
package ports
