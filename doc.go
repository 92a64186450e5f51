/*
Package strata orchestrates layered text annotation.

A Document holds raw text, its tokenization and any number of named views. Each view is
produced by exactly one Annotator, which declares the views it needs as prerequisites.
Asking for a view runs the minimal, dependency-ordered set of annotators that makes it
present, skipping work that is already done.

# Concept

The Service owns a Registry mapping view names to annotators. Registration is strict:
an annotator can only be added once everything it depends on is registered, so the
registry never holds a cycle. registry.Build accepts annotators in any order when a
pipeline is assembled from configuration.

Resolution is deterministic. For a fixed registry, the same request against the same
document always yields the same plan, ordered by registration.

Execution is best effort. The first failing annotator stops the plan, views written
before it stay on the document, and the returned *domain.ExecutionError names both the
failed annotator and the view the caller asked for.

# Usage

	svc := strata.New()
	_ = svc.AddAnnotator(annotators.NewNormalizer(annotators.NormalizerOptions{}))
	_ = svc.AddAnnotator(annotators.NewStopwordTagger(annotators.StopwordOptions{Terms: []string{"the"}}))

	doc, err := svc.CreateBasicDocument(ctx, "news", "a1", "The chip rally continues.", nil)
	if err != nil {
		log.Fatal(err)
	}
	changed, err := svc.AddView(ctx, doc, domain.ViewStopwords, nil)

# Concurrency

Calls that write views to the same document are serialized by a per-document guard;
different documents proceed in parallel. Plug a ports.DistributedLocker (see
pkg/adapters/redis) to extend the guard across replicas.
*/
package strata
