package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type mongoPaginate struct {
	limit int64
	page  int64
}

func newMongoPaginate(limit, page int) *mongoPaginate {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page <= 0 {
		page = 1
	}
	return &mongoPaginate{
		limit: int64(limit),
		page:  int64(page),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	skip := mp.page*mp.limit - mp.limit
	fOpt := options.FindOptions{Limit: &l, Skip: &skip}

	return &fOpt
}

// PageWindow returns the [start, end) window of page over n items using the
// same limit and page defaults as the mongo stores
func PageWindow(limit, page, n int) (int, int) {
	mp := newMongoPaginate(limit, page)
	start := int(mp.page*mp.limit - mp.limit)
	if start > n {
		start = n
	}
	end := start + int(mp.limit)
	if end > n {
		end = n
	}
	return start, end
}

// newestFirst sorts by creation time descending
func newestFirst(opts *options.FindOptions) *options.FindOptions {
	return opts.SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}
