package pipeline

import "errors"

// ErrNoCorpus is returned by steps that require an indexed corpus when
// the index step has not run. It indicates a mis-assembled pipeline
// rather than a problem with the scanned tree.
var ErrNoCorpus = errors.New("no corpus on report: index step must run first")
