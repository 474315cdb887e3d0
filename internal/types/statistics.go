package types

import "sort"

// Grouping selects how the statistics aggregator buckets files.
type Grouping string

const (
	GroupByExtension Grouping = "extension"
	GroupByDirectory Grouping = "directory"
)

// View names one of the node sets statistics can be computed over.
type View string

const (
	ViewAll       View = "all"
	ViewEffective View = "effective"
	ViewRemoved   View = "removed"
)

// Bucket holds the totals for one grouping key.
type Bucket struct {
	FileCount      int            `json:"files" yaml:"files"`
	TotalSizeBytes int64          `json:"bytes" yaml:"bytes"`
	Tokens         map[string]int `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

func (bucket Bucket) clone() Bucket {
	cloned := bucket
	if bucket.Tokens != nil {
		cloned.Tokens = make(map[string]int, len(bucket.Tokens))
		for model, count := range bucket.Tokens {
			cloned.Tokens[model] = count
		}
	}
	return cloned
}

// StatisticsRecord is the snapshot produced by one aggregation.
type StatisticsRecord struct {
	Grouping Grouping          `json:"grouping" yaml:"grouping"`
	Buckets  map[string]Bucket `json:"buckets" yaml:"buckets"`
	Total    Bucket            `json:"total" yaml:"total"`
	Problems []ContentError    `json:"-" yaml:"-"`
}

// Keys returns the bucket keys in lexical order.
func (record StatisticsRecord) Keys() []string {
	keys := make([]string, 0, len(record.Buckets))
	for key := range record.Buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Bucket returns a copy of the bucket stored under key.
func (record StatisticsRecord) Bucket(key string) (Bucket, bool) {
	bucket, found := record.Buckets[key]
	if !found {
		return Bucket{}, false
	}
	return bucket.clone(), true
}
