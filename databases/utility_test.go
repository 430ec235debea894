package databases

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		page      int
		n         int
		wantStart int
		wantEnd   int
	}{
		{"defaults", 0, 0, 50, 0, 20},
		{"second page", 10, 2, 25, 10, 20},
		{"short last page", 10, 3, 25, 20, 25},
		{"past the end", 10, 9, 25, 25, 25},
		{"limit capped", 500, 1, 300, 0, 100},
		{"empty", 5, 1, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := PageWindow(tt.limit, tt.page, tt.n)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestPaginatedOpts(t *testing.T) {
	opts := newMongoPaginate(10, 3).getPaginatedOpts()
	assert.Equal(t, int64(10), *opts.Limit)
	assert.Equal(t, int64(20), *opts.Skip)
}
