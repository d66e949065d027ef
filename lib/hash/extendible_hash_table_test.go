package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableInsertGetRemove(t *testing.T) {
	tbl := NewInt32Keyed[int32, string](4)

	tbl.Insert(1, "a")
	tbl.Insert(2, "b")

	v, ok := tbl.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	assert.True(t, tbl.Remove(1))
	_, ok = tbl.Get(1)
	assert.False(t, ok)

	assert.False(t, tbl.Remove(1), "removing an absent key reports false")
}

func TestTableUpdateExistingKey(t *testing.T) {
	tbl := NewInt32Keyed[int32, string](4)
	tbl.Insert(1, "a")
	tbl.Insert(1, "b")

	v, ok := tbl.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, tbl.Size())
}

func TestTableSplitsWhenBucketOverflows(t *testing.T) {
	tbl := NewInt32Keyed[int32, int32](2)

	assert.Equal(t, 0, tbl.GlobalDepth())

	for i := int32(0); i < 64; i++ {
		tbl.Insert(i, i*10)
	}

	assert.Greater(t, tbl.GlobalDepth(), 0, "inserting enough keys must grow the directory")
	assert.Equal(t, 64, tbl.Size())

	for i := int32(0); i < 64; i++ {
		v, ok := tbl.Get(i)
		assert.True(t, ok)
		assert.Equal(t, i*10, v)
	}
}

func TestTableLocalDepthNeverExceedsGlobalDepth(t *testing.T) {
	tbl := NewInt32Keyed[int32, int32](2)
	for i := int32(0); i < 200; i++ {
		tbl.Insert(i, i)
	}

	for i := int32(0); i < 200; i++ {
		assert.LessOrEqual(t, tbl.LocalDepth(i), tbl.GlobalDepth())
	}
}

func TestTableDirectorySizeIsPowerOfTwoOfGlobalDepth(t *testing.T) {
	tbl := NewInt32Keyed[int32, int32](2)
	for i := int32(0); i < 500; i++ {
		tbl.Insert(i, i)
		assert.Equal(t, 1<<uint(tbl.GlobalDepth()), len(tbl.directory))
	}
}

func TestTableNumBucketsNeverExceedsDirectorySize(t *testing.T) {
	tbl := NewInt32Keyed[int32, int32](2)
	assert.Equal(t, 1, tbl.NumBuckets())

	for i := int32(0); i < 300; i++ {
		tbl.Insert(i, i)
		assert.LessOrEqual(t, tbl.NumBuckets(), 1<<uint(tbl.GlobalDepth()))
	}
	assert.Greater(t, tbl.NumBuckets(), 1, "splitting must grow the bucket count past the initial single bucket")
}

func TestTableSplitDistributesAcrossFourDistinctLowBitPatterns(t *testing.T) {
	// Enough keys, small enough buckets, that every one of the four
	// possible low-two-bit patterns is forced into its own split lineage.
	tbl := NewInt32Keyed[int32, int32](1)

	for i := int32(0); i < 32; i++ {
		tbl.Insert(i, i)
	}

	assert.GreaterOrEqual(t, tbl.GlobalDepth(), 2)
	assert.Equal(t, 1<<uint(tbl.GlobalDepth()), len(tbl.directory))
	assert.GreaterOrEqual(t, tbl.NumBuckets(), 4)

	for i := int32(0); i < 32; i++ {
		v, ok := tbl.Get(i)
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}
