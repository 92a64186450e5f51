package strata_test

import (
	"context"
	"fmt"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/annotators"
	"github.com/aretw0/strata/pkg/domain"
)

func Example() {
	ctx := context.Background()
	svc := strata.New()

	_ = svc.AddAnnotator(annotators.NewNormalizer(annotators.NormalizerOptions{}))
	_ = svc.AddAnnotator(annotators.NewStopwordTagger(annotators.StopwordOptions{Terms: []string{"the", "on"}}))
	_ = svc.AddAnnotator(annotators.NewPhraseRecognizer([]annotators.DictEntry{
		{Canonical: "machine learning", Variants: []string{"ml"}, Category: "tech"},
	}))
	_ = svc.AddAnnotator(annotators.NewCategorizer(annotators.TaxonomyOptions{
		Sectors: map[string][]string{"ai": {"machine learning"}, "chips": {"gpu"}},
	}))

	doc, err := svc.CreateBasicDocument(ctx, "news", "a1", "The GPU shortage hits ML labs.", nil)
	if err != nil {
		fmt.Println(err)
		return
	}

	changed, err := svc.AddView(ctx, doc, domain.ViewCategories, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	cats, _ := annotators.Categories(doc)

	fmt.Println(changed)
	fmt.Println(doc.ViewNames())
	fmt.Println(cats)
	// Output:
	// true
	// [CATEGORIES NORMALIZED PHRASES STOPWORDS]
	// [ai chips]
}

func ExampleService_Plan() {
	svc := strata.New()
	_ = svc.AddAnnotator(annotators.NewNormalizer(annotators.NormalizerOptions{}))
	_ = svc.AddAnnotator(annotators.NewStopwordTagger(annotators.StopwordOptions{}))
	_ = svc.AddAnnotator(annotators.NewPhraseRecognizer(nil))
	_ = svc.AddAnnotator(annotators.NewCategorizer(annotators.TaxonomyOptions{}))

	plan, _ := svc.Plan(context.Background(), nil, domain.ViewCategories)
	for _, step := range plan.Steps {
		fmt.Println(step.View, "by", step.Annotator)
	}
	// Output:
	// NORMALIZED by normalizer
	// STOPWORDS by stopword-tagger
	// PHRASES by phrase-recognizer
	// CATEGORIES by categorizer
}
