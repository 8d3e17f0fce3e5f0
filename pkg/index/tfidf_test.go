package index

import (
	"testing"

	"docuchat/pkg/cache"
	"docuchat/pkg/logger"
	"docuchat/pkg/types"
)

func buildTestIndex(docs ...Document) *Index {
	ix := NewIndex(logger.NewLogger("error", false))
	for _, doc := range docs {
		ix.Add(doc)
	}
	ix.Build()
	return ix
}

func TestSearchRanksRelevantPageFirst(t *testing.T) {
	ix := buildTestIndex(
		Document{File: "manual.pdf", Page: 1, Text: "installing the turbine requires a torque wrench and safety gloves"},
		Document{File: "manual.pdf", Page: 2, Text: "the warranty covers manufacturing defects for two years"},
		Document{File: "recipes.txt", Page: 1, Text: "slowly whisk the eggs into the warm butter"},
	)

	matches := ix.Search("turbine torque wrench", 3, 0.0)
	if len(matches) == 0 {
		t.Fatal("no matches for a query with exact term overlap")
	}
	top := matches[0].Document
	if top.File != "manual.pdf" || top.Page != 1 {
		t.Fatalf("top match = %s page %d, want manual.pdf page 1", top.File, top.Page)
	}
	if matches[0].Score <= 0 {
		t.Fatalf("top score = %f, want positive", matches[0].Score)
	}
}

func TestSearchRespectsMinScore(t *testing.T) {
	ix := buildTestIndex(
		Document{File: "a.txt", Page: 1, Text: "completely unrelated content about gardening"},
	)
	if matches := ix.Search("quantum chromodynamics lagrangian", 5, 0.05); len(matches) != 0 {
		t.Fatalf("got %d matches for an unrelated query, want 0", len(matches))
	}
}

func TestSearchRespectsTopK(t *testing.T) {
	ix := buildTestIndex(
		Document{File: "a.txt", Page: 1, Text: "shared keyword alpha"},
		Document{File: "b.txt", Page: 1, Text: "shared keyword beta"},
		Document{File: "c.txt", Page: 1, Text: "shared keyword gamma"},
	)
	if matches := ix.Search("keyword", 2, 0.0); len(matches) > 2 {
		t.Fatalf("got %d matches, want at most 2", len(matches))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := buildTestIndex(
		Document{File: "a.txt", Page: 1, Text: "some indexed content"},
	)
	if matches := ix.Search("the and of", 5, 0.0); matches != nil {
		t.Fatalf("stopword-only query returned %d matches, want none", len(matches))
	}
}

func TestAddEntrySkipsFailedPagesAndMarksIncomplete(t *testing.T) {
	entry := cache.NewEntry("fp", types.MethodOCR, []types.PageText{
		{Number: 1, Text: "readable ocr text about invoices"},
		{Number: 2, Failed: true},
	})

	ix := NewIndex(logger.NewLogger("error", false))
	ix.AddEntry("scan.pdf", entry)
	ix.Build()

	if ix.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (failed page skipped)", ix.Len())
	}
	matches := ix.Search("invoices", 1, 0.0)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	doc := matches[0].Document
	if !doc.Incomplete {
		t.Fatal("page from a partially failed document not marked incomplete")
	}
	if doc.Method != types.MethodOCR || doc.Page != 1 {
		t.Fatalf("citation = %+v, want OCR page 1", doc)
	}
}

func TestTokenizeFiltersStopwordsAndShortTokens(t *testing.T) {
	tokens := tokenize("The cat and a dog in München, ID 42!")
	want := map[string]bool{"cat": true, "dog": true, "münchen": true, "42": true, "id": true}
	for _, tok := range tokens {
		if !want[tok] {
			t.Fatalf("unexpected token %q in %v", tok, tokens)
		}
		delete(want, tok)
	}
	if len(want) != 0 {
		t.Fatalf("missing tokens: %v (got %v)", want, tokens)
	}
}
