// Package normalisers transforms raw corpus files into plain-text form
// ready for chunking and indexing. Each format lives in its own
// subpackage; the markdown normaliser is the only one the corpus
// currently needs.
package normalisers
