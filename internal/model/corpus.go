package model

import "sort"

// Corpus is the set of component records for one scan, keyed by
// root-relative slash-normalized path. Keys are unique by construction
// (no two files share a path under one root); iteration order is
// irrelevant to correctness, so reporting always goes through Paths()
// for deterministic output.
//
// The Corpus itself is not safe for concurrent mutation. The pipeline
// builds it in the index phase, after which the scan phase only reads
// the map and mutates individual records through their own guards.
type Corpus struct {
	records map[string]*ComponentRecord
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		records: make(map[string]*ComponentRecord),
	}
}

// Add inserts a record, replacing any existing record with the same
// relative path. Directory-walk semantics make replacement unreachable
// in practice, but the map keeps the last writer either way.
func (c *Corpus) Add(record *ComponentRecord) {
	c.records[record.RelativePath] = record
}

// Get returns the record for the given relative path, or nil.
func (c *Corpus) Get(relativePath string) *ComponentRecord {
	return c.records[relativePath]
}

// Len returns the number of records in the corpus.
func (c *Corpus) Len() int {
	return len(c.records)
}

// Paths returns all relative paths sorted lexicographically ascending.
func (c *Corpus) Paths() []string {
	paths := make([]string, 0, len(c.records))
	for path := range c.records {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Records returns all records ordered by relative path.
func (c *Corpus) Records() []*ComponentRecord {
	records := make([]*ComponentRecord, 0, len(c.records))
	for _, path := range c.Paths() {
		records = append(records, c.records[path])
	}
	return records
}
