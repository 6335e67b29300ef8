package scanner

import (
	"github.com/nao1215/orphanscan/internal/model"
)

// Classifier filters a fully-scanned corpus down to its orphans.
// A record is an orphan iff its referenced flag is false and its
// relative path is not in the entry-point set.
type Classifier struct {
	// entryPoints are root-relative slash-normalized paths always
	// excluded from the orphan report, regardless of reference count.
	// They are the graph's conventional roots: bootstrap files and
	// router roots that nothing imports by name.
	entryPoints map[string]bool
}

// NewClassifier creates a Classifier with the given entry-point set.
// A nil set means no entry points.
func NewClassifier(entryPoints map[string]bool) *Classifier {
	if entryPoints == nil {
		entryPoints = make(map[string]bool)
	}
	return &Classifier{entryPoints: entryPoints}
}

// Classify returns the orphan relative paths sorted lexicographically
// ascending. An empty corpus yields an empty list, not an error.
func (c *Classifier) Classify(corpus *model.Corpus) []string {
	orphans := make([]string, 0)
	// Records is already ordered by relative path, so the result is
	// sorted without a second pass.
	for _, record := range corpus.Records() {
		if record.Referenced() {
			continue
		}
		if c.entryPoints[record.RelativePath] {
			continue
		}
		orphans = append(orphans, record.RelativePath)
	}
	return orphans
}
