package archive

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsArray(t *testing.T) {
	assert.Equal(t, pq.StringArray{"go", "ai"}, tagsArray([]string{"go", "ai"}))

	tests := []struct {
		name string
		tags []string
	}{
		{name: "nil tags"},
		{name: "empty tags", tags: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tagsArray(tt.tags).Value()
			require.NoError(t, err)

			// An untagged record binds as an empty array, never NULL.
			require.NotNil(t, v)
			assert.Equal(t, "{}", v)
		})
	}
}
