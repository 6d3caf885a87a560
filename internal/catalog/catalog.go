// Package catalog holds the fixed list of downloadable past-question documents
// and answers filename searches against it.
package catalog

import "strings"

// Document is a single downloadable file known to the bot.
type Document struct {
	Filename    string `yaml:"filename" toml:"filename"`
	Description string `yaml:"description" toml:"description"`
}

// Catalog is an immutable, ordered collection of documents.
// It is safe for concurrent use because nothing mutates it after New.
type Catalog struct {
	docs  []Document
	names []string // lower-cased filenames, index-aligned with docs
}

// New builds a catalog preserving the order of docs.
func New(docs ...Document) *Catalog {
	c := &Catalog{
		docs:  make([]Document, len(docs)),
		names: make([]string, len(docs)),
	}
	copy(c.docs, docs)
	for i, d := range c.docs {
		c.names[i] = strings.ToLower(d.Filename)
	}
	return c
}

// Default returns the built-in catalog used when no catalog file is configured.
func Default() *Catalog {
	return New(
		Document{Filename: "UHAS.pdf", Description: "Description 1"},
		Document{Filename: "UHAS.pdf", Description: "Description 2"},
		Document{Filename: "UHAS.pdf", Description: "Description 3"},
		Document{Filename: "UHAS.pdf", Description: "Description 4"},
	)
}

// Search returns every document whose filename contains query, ignoring case,
// in catalog order. An empty query matches every document.
func (c *Catalog) Search(query string) []Document {
	if c == nil {
		return nil
	}
	q := strings.ToLower(query)
	var out []Document
	for i, name := range c.names {
		if strings.Contains(name, q) {
			out = append(out, c.docs[i])
		}
	}
	return out
}

// Len reports the number of documents.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// All returns a copy of every document in catalog order.
func (c *Catalog) All() []Document {
	if c == nil {
		return nil
	}
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}
