package domain

// View names produced by the built-in annotators.
const (
	ViewNormalized = "NORMALIZED"
	ViewStopwords  = "STOPWORDS"
	ViewPhrases    = "PHRASES"
	ViewEntities   = "ENTITIES"
	ViewCategories = "CATEGORIES"
)

// DefaultCorpus is used when a caller does not name a corpus.
const DefaultCorpus = "default"
