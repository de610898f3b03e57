package gencommon

import (
	"strings"
	"sync"
)

// StringBuilderPool provides pooled strings.Builder instances to reduce allocations
var StringBuilderPool = sync.Pool{
	New: func() interface{} {
		b := new(strings.Builder)
		b.Grow(16 * 1024) // a typical engine file for a few dozen models
		return b
	},
}

// GetBuilder retrieves a builder from the pool
func GetBuilder() *strings.Builder {
	return StringBuilderPool.Get().(*strings.Builder)
}

// PutBuilder returns a builder to the pool after resetting it
func PutBuilder(b *strings.Builder) {
	b.Reset()
	StringBuilderPool.Put(b)
}
