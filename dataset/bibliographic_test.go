package dataset

import (
	"testing"

	"github.com/hupe1980/dedupe/engine"
	"github.com/hupe1980/dedupe/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ engine.Oracle = (*Bibliographic)(nil)

func TestBibliographicIdenticalRecords(t *testing.T) {
	o := NewBibliographic()

	a := record.Record{"id": "r1", "author": "Smith, J.", "title": "A Survey of Things"}
	b := record.Record{"id": "r2", "author": "Smith, J.", "title": "A Survey of Things"}

	score, err := o.Similarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestBibliographicNormalizesAccentsAndCase(t *testing.T) {
	o := NewBibliographic()

	a := record.Record{"id": "r1", "author": "Müller, J."}
	b := record.Record{"id": "r2", "author": "MULLER J"}

	score, err := o.Similarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestBibliographicDisjointRecords(t *testing.T) {
	o := NewBibliographic()

	a := record.Record{"id": "r1", "title": "deep learning survey"}
	b := record.Record{"id": "r2", "title": "molecular biology primer"}

	score, err := o.Similarity(a, b)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestBibliographicPartialOverlap(t *testing.T) {
	o := NewBibliographic()

	a := record.Record{"id": "r1", "title": "deep learning survey"}
	b := record.Record{"id": "r2", "title": "deep learning"}

	// Token sets {deep, learning, survey} and {deep, learning}: 2/3.
	score, err := o.Similarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, score, 1e-9)
}

func TestBibliographicSymmetric(t *testing.T) {
	o := NewBibliographic()

	a := record.Record{"id": "r1", "author": "Smith", "title": "survey of things"}
	b := record.Record{"id": "r2", "author": "Smith J", "title": "a survey"}

	ab, err := o.Similarity(a, b)
	require.NoError(t, err)
	ba, err := o.Similarity(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestBibliographicWeights(t *testing.T) {
	o := NewBibliographic(func(o *Options) {
		o.Weights = map[string]float64{"author": 0.8, "title": 0.2}
	})

	// Authors match exactly, titles are disjoint.
	a := record.Record{"id": "r1", "author": "smith", "title": "alpha"}
	b := record.Record{"id": "r2", "author": "smith", "title": "beta"}

	score, err := o.Similarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, score, 1e-9)
}

func TestBibliographicSkipsFieldsBlankOnBothSides(t *testing.T) {
	o := NewBibliographic(func(o *Options) {
		o.Weights = map[string]float64{"author": 0.5, "venue": 0.5}
	})

	// venue is missing on both sides, so author carries all the weight.
	a := record.Record{"id": "r1", "author": "smith"}
	b := record.Record{"id": "r2", "author": "smith"}

	score, err := o.Similarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestBibliographicFieldBlankOnOneSideScoresZero(t *testing.T) {
	o := NewBibliographic(func(o *Options) {
		o.Weights = map[string]float64{"author": 0.5, "venue": 0.5}
	})

	a := record.Record{"id": "r1", "author": "smith", "venue": "vldb"}
	b := record.Record{"id": "r2", "author": "smith"}

	score, err := o.Similarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestBibliographicNoComparableFields(t *testing.T) {
	o := NewBibliographic()

	score, err := o.Similarity(record.Record{"id": "r1"}, record.Record{"id": "r2"})
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestBibliographicIgnoresIDField(t *testing.T) {
	o := NewBibliographic()

	// Identical ids must not count as similarity evidence.
	a := record.Record{"id": "same", "title": "alpha"}
	b := record.Record{"id": "same", "title": "beta"}

	score, err := o.Similarity(a, b)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestBibliographicThreshold(t *testing.T) {
	assert.Equal(t, DefaultThreshold, NewBibliographic().Threshold())

	o := NewBibliographic(func(o *Options) {
		o.Threshold = 0.75
	})
	assert.Equal(t, 0.75, o.Threshold())
}

func TestCoraWeightsAreNormalized(t *testing.T) {
	var sum float64
	for _, w := range CoraWeights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
