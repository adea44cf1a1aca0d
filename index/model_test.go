package index

import (
	"math"
	"strings"
	"testing"

	"github.com/poiesic/boox/analysis"
	"github.com/poiesic/boox/core"
	"github.com/poiesic/boox/encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(featureKeys ...string) *Model {
	return New(featureKeys, encoder.New(encoder.WithNormalizer(strings.TrimSpace)))
}

func newTestDocument() *core.Document {
	return &core.Document{
		ID: "1",
		Attributes: core.Attributes{
			"title":   "Foo Bar",
			"content": "This is a foo bar document.",
		},
	}
}

func TestTrain(t *testing.T) {
	t.Run("indexes every feature", func(t *testing.T) {
		model := newTestModel("title", "content")
		model.Train(newTestDocument())

		features := model.Features()
		assert.Equal(t, core.Postings{"1": 0.5}, features["title"]["foo"])
		assert.Equal(t, core.Postings{"1": 0.5}, features["title"]["bar"])
		for _, code := range []string{"this", "is", "a", "foo", "bar", "document"} {
			assert.InDelta(t, 1.0/6.0, features["content"][code]["1"], 1e-12, code)
		}

		doc, ok := model.Document("1")
		require.True(t, ok)
		assert.InDelta(t, math.Sqrt(0.5+1.0/6.0), doc.Magnitude, 1e-12)

		_, hasFoo := model.Terms()["foo"]
		assert.True(t, hasFoo)
	})

	t.Run("magnitude counts every occurrence", func(t *testing.T) {
		model := newTestModel("title")
		model.Train(&core.Document{ID: "1", Attributes: core.Attributes{"title": "foo foo bar"}})

		doc, _ := model.Document("1")
		// foo: 2/3 twice, bar: 1/3 once
		want := math.Sqrt(2*(2.0/3.0)*(2.0/3.0) + (1.0/3.0)*(1.0/3.0))
		assert.InDelta(t, want, doc.Magnitude, 1e-12)
	})

	t.Run("normalizes array values", func(t *testing.T) {
		model := newTestModel("title", "content", "tags")
		doc := newTestDocument()
		doc.Attributes["tags"] = []any{"foo", "bar"}
		model.Train(doc)

		assert.Equal(t, core.Postings{"1": 0.5}, model.Features()["tags"]["foo"])
		assert.Equal(t, core.Postings{"1": 0.5}, model.Features()["tags"]["bar"])
	})

	t.Run("unsupported values create an empty field", func(t *testing.T) {
		model := New([]string{"title", "content", "tags", "qux"}, nil)
		doc := newTestDocument()
		doc.Attributes["tags"] = []any{"foo", "bar"}
		doc.Attributes["qux"] = map[string]any{"qux": ""}
		model.Train(doc)

		require.Contains(t, model.Features(), "qux")
		assert.Empty(t, model.Features()["qux"])
		_, hasFoo := model.Terms()["foo"]
		assert.True(t, hasFoo)
	})

	t.Run("falsy values are skipped", func(t *testing.T) {
		model := newTestModel("title", "content")
		model.Train(&core.Document{ID: "1", Attributes: core.Attributes{"title": "", "content": nil}})

		assert.Empty(t, model.Features())
		doc, ok := model.Document("1")
		require.True(t, ok)
		assert.Zero(t, doc.Magnitude)
	})
}

func TestPrepareDoesNotMutate(t *testing.T) {
	model := newTestModel("title")
	doc := &core.Document{ID: "1", Attributes: core.Attributes{"title": "foo bar foo"}}

	prepared := model.Prepare(doc)

	assert.Zero(t, model.Len())
	assert.Empty(t, model.Features())
	assert.Zero(t, doc.Magnitude)
	assert.Equal(t, []string{"title"}, prepared.Fields)
	assert.Equal(t, []Entry{
		{Field: "title", Code: "foo", TF: 2.0 / 3.0},
		{Field: "title", Code: "bar", TF: 1.0 / 3.0},
	}, prepared.Entries)

	model.Apply(prepared)
	assert.Equal(t, 1, model.Len())
	assert.InDelta(t, prepared.Magnitude, doc.Magnitude, 0)
}

func TestUpdate(t *testing.T) {
	model := newTestModel("title", "content")
	model.Train(newTestDocument())

	model.Update(&core.Document{
		ID: "1",
		Attributes: core.Attributes{
			"title":   "Updated Title",
			"content": "This is an updated content.",
		},
		Magnitude: 2,
	})

	_, hasFoo := model.Terms()["foo"]
	assert.False(t, hasFoo)
	_, hasUpdated := model.Terms()["updated"]
	assert.True(t, hasUpdated)

	doc, _ := model.Document("1")
	assert.NotEqual(t, 2.0, doc.Magnitude)
}

func TestRemove(t *testing.T) {
	t.Run("removes the document and its postings", func(t *testing.T) {
		model := newTestModel("title", "content")
		model.Train(newTestDocument())
		model.Remove("1")

		assert.Zero(t, model.Len())
		assert.Empty(t, model.Terms())
	})

	t.Run("keeps emptied field maps", func(t *testing.T) {
		model := newTestModel("title", "content")
		model.Train(newTestDocument())
		model.Remove("1")

		features := model.Features()
		require.Contains(t, features, "title")
		require.Contains(t, features, "content")
		assert.Empty(t, features["title"])
		assert.Empty(t, features["content"])
	})

	t.Run("leaves other documents alone", func(t *testing.T) {
		model := newTestModel("title")
		model.Train(&core.Document{ID: "1", Attributes: core.Attributes{"title": "foo bar"}})
		model.Train(&core.Document{ID: "2", Attributes: core.Attributes{"title": "foo"}})
		model.Remove("1")

		assert.Equal(t, core.Postings{"2": 1}, model.Postings("title", "foo"))
		assert.Nil(t, model.Postings("title", "bar"))
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		model := newTestModel("title")
		model.Train(&core.Document{ID: "1", Attributes: core.Attributes{"title": "foo"}})
		model.Remove("404")
		assert.Equal(t, 1, model.Len())
	})
}

func TestTermFrequency(t *testing.T) {
	model := newTestModel()
	codes := []string{"hello", "world", "hello", "hello", "world"}

	assert.Equal(t, 0.6, model.TermFrequency(codes, "hello"))
	assert.Equal(t, 0.4, TermFrequency(codes, "world"))
	assert.Zero(t, TermFrequency(codes, "missing"))
	assert.Zero(t, TermFrequency(nil, "hello"))
}

func TestIDF(t *testing.T) {
	t.Run("single document corpus", func(t *testing.T) {
		model := newTestModel("title", "content")
		model.Train(newTestDocument())

		idf := model.IDF("foo")
		assert.Greater(t, idf, 0.0)
		assert.InDelta(t, 0.3068528194400547, idf, 1e-12)
		assert.Equal(t, 1.0, model.IDF("hello"))
	})

	t.Run("document frequency ignores field boundaries", func(t *testing.T) {
		model := newTestModel("title", "content")
		model.Train(newTestDocument())
		model.Train(&core.Document{ID: "2", Attributes: core.Attributes{"title": "Baz"}})

		// foo appears in both fields of document 1 only
		assert.Equal(t, 1, model.DocumentFrequency("foo"))
		assert.InDelta(t, math.Log(2.0/2.0)+1, model.IDF("foo"), 1e-12)
		assert.Equal(t, 1, model.DocumentFrequency("baz"))
		assert.Zero(t, model.DocumentFrequency("missing"))
	})

	t.Run("reflects removals", func(t *testing.T) {
		model := newTestModel("title")
		model.Train(&core.Document{ID: "1", Attributes: core.Attributes{"title": "foo"}})
		model.Train(&core.Document{ID: "2", Attributes: core.Attributes{"title": "foo"}})
		assert.InDelta(t, math.Log(2.0/3.0)+1, model.IDF("foo"), 1e-12)

		model.Remove("2")
		assert.InDelta(t, math.Log(1.0/2.0)+1, model.IDF("foo"), 1e-12)
	})
}

func TestOrderedPostings(t *testing.T) {
	model := newTestModel("title")
	for _, id := range []string{"b", "10", "a", "2", "007"} {
		model.Train(&core.Document{ID: id, Attributes: core.Attributes{"title": "foo"}})
	}

	postings := model.OrderedPostings("title", "foo")
	ids := make([]string, len(postings))
	for i, p := range postings {
		ids[i] = p.DocID
	}
	assert.Equal(t, []string{"2", "10", "b", "a", "007"}, ids)
	assert.Nil(t, model.OrderedPostings("title", "missing"))
}

func TestFields(t *testing.T) {
	model := newTestModel("title", "content")
	model.Restore([]string{"title", "content"}, map[string]*core.Document{}, core.Features{
		"zeta":    core.Encodings{},
		"content": core.Encodings{},
		"alpha":   core.Encodings{},
		"title":   core.Encodings{},
	})

	assert.Equal(t, []string{"title", "content", "alpha", "zeta"}, model.Fields())
}

func TestFieldsFollowIndexingOrder(t *testing.T) {
	model := newTestModel("title", "content", "7")
	model.Train(&core.Document{ID: "a", Attributes: core.Attributes{"content": "foo"}})
	assert.Equal(t, []string{"content"}, model.Fields())

	model.Train(&core.Document{ID: "b", Attributes: core.Attributes{"title": "bar", "7": "baz"}})
	assert.Equal(t, []string{"7", "content", "title"}, model.Fields())

	model.Remove("a")
	assert.Equal(t, []string{"7", "content", "title"}, model.Fields(), "emptied fields keep their place")
}

func TestRestore(t *testing.T) {
	source := newTestModel("title", "content")
	source.Train(newTestDocument())

	restored := newTestModel()
	restored.Restore(source.FeatureKeys(), source.Documents(), source.Features())

	assert.Equal(t, []string{"title", "content"}, restored.FeatureKeys())
	assert.Equal(t, 1, restored.Len())
	assert.InDelta(t, source.IDF("foo"), restored.IDF("foo"), 0)

	restored.Train(&core.Document{ID: "2", Attributes: core.Attributes{"title": "foo"}})
	assert.Equal(t, 2, restored.DocumentFrequency("foo"))
}

func TestArrayIndex(t *testing.T) {
	tests := []struct {
		id   string
		want uint64
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"007", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
		{"4294967294", 4294967294, true},
		{"4294967295", 0, false},
	}
	for _, tt := range tests {
		got, ok := ArrayIndex(tt.id)
		assert.Equal(t, tt.ok, ok, tt.id)
		assert.Equal(t, tt.want, got, tt.id)
	}
}

func TestDoubleMetaphonePostings(t *testing.T) {
	model := New([]string{"name"}, encoder.New(encoder.WithMultiPhonetic(analysis.DoubleMetaphone)))
	model.Train(&core.Document{ID: "1", Attributes: core.Attributes{"name": "Smith"}})
	model.Train(&core.Document{ID: "2", Attributes: core.Attributes{"name": "Schmidt"}})

	assert.Equal(t, core.Postings{"1": 0.5}, model.Postings("name", "SM0"))
	assert.Equal(t, core.Postings{"1": 0.5, "2": 0.5}, model.Postings("name", "XMT"))
	assert.Equal(t, core.Postings{"2": 0.5}, model.Postings("name", "SMT"))
	assert.Equal(t, 2, model.DocumentFrequency("XMT"))

	doc, ok := model.Document("1")
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(0.5), doc.Magnitude, 1e-12)
}
