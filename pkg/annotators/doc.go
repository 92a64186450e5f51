/*
Package annotators provides ready-made ports.Annotator implementations.

The built-in set forms a small text-analysis pipeline:

	NORMALIZED  <- (none)
	STOPWORDS   <- NORMALIZED
	PHRASES     <- NORMALIZED
	ENTITIES    <- NORMALIZED
	CATEGORIES  <- PHRASES, STOPWORDS

Func adapts a plain function to the Annotator interface for one-off components and tests.
*/
package annotators
