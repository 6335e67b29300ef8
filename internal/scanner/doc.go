// Package scanner implements the reference-graph orphan detection core.
//
// Detection runs as a strict three-phase pipeline with no feedback:
//
//  1. Indexer walks a root directory and builds the corpus of eligible
//     component files.
//  2. ReferenceScanner reads every file's content once and marks every
//     other record whose identifier occurs as a substring of it.
//  3. Classifier filters the corpus to unreferenced records that are not
//     configured entry points and emits the sorted orphan list.
//
// The containment test is deliberately crude: a case-sensitive,
// non-tokenized substring check with no word-boundary handling. An
// identifier "Button" is marked referenced by content containing
// "IconButton" or "ButtonGroup". This imprecision is part of the tool's
// contract — downstream consumers and the test suite depend on it — and
// must not be "fixed" with smarter matching.
package scanner
