package domain

import (
	"fmt"
	"sort"
	"strings"
)

// NoDocumentsAvailable is the formatted catalog when nothing is indexed.
const NoDocumentsAvailable = "No documents available"

// DocumentDescriptor identifies one document in the corpus.
// Descriptors are derived from chunk metadata and never change for
// the lifetime of a pipeline.
type DocumentDescriptor struct {
	// Key is the unique, stable identifier (e.g. PCGH_2025_Eurovent).
	Key string

	// Code is the short document code (e.g. PCGH).
	Code string

	// Year is the publication year, if known.
	Year string

	// Standard is the certification standard or readable name.
	Standard string
}

// Description returns a human-readable label for the document.
func (d DocumentDescriptor) Description() string {
	if d.Year != "" && d.Standard != strings.ReplaceAll(d.Key, "_", " ") {
		return fmt.Sprintf("%s (%s - %s)", d.Code, d.Year, d.Standard)
	}
	if d.Standard != "" {
		return d.Standard
	}
	return d.Key
}

// ShortCode returns the portion of the key before its first separator.
func (d DocumentDescriptor) ShortCode() string {
	return ShortCode(d.Key)
}

// ShortCode returns the portion of a document key before its first "_".
func ShortCode(key string) string {
	code, _, _ := strings.Cut(key, "_")
	return code
}

// Catalog is the ordered set of known documents.
// Every key in the ordered set has a descriptor.
type Catalog struct {
	keys []string
	docs map[string]DocumentDescriptor
}

// NewCatalog builds a catalog from descriptors.
// Keys are sorted lexicographically; the first descriptor seen for a key wins.
func NewCatalog(descriptors []DocumentDescriptor) *Catalog {
	c := &Catalog{
		docs: make(map[string]DocumentDescriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		if d.Key == "" {
			continue
		}
		if _, ok := c.docs[d.Key]; ok {
			continue
		}
		c.docs[d.Key] = d
		c.keys = append(c.keys, d.Key)
	}
	sort.Strings(c.keys)
	return c
}

// Keys returns the sorted document keys.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Len returns the number of documents.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Get returns the descriptor for a key.
func (c *Catalog) Get(key string) (DocumentDescriptor, bool) {
	if c == nil {
		return DocumentDescriptor{}, false
	}
	d, ok := c.docs[key]
	return d, ok
}

// Contains reports whether the key is a catalog member.
func (c *Catalog) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Descriptors returns the descriptors in catalog order.
func (c *Catalog) Descriptors() []DocumentDescriptor {
	if c == nil {
		return nil
	}
	out := make([]DocumentDescriptor, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.docs[k])
	}
	return out
}

// Resolve maps a loosely written document reference onto a catalog key.
// It tries an exact key, then a case-insensitive key, then a short code
// that belongs to exactly one document.
func (c *Catalog) Resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || c == nil {
		return "", false
	}
	if c.Contains(ref) {
		return ref, true
	}
	for _, k := range c.keys {
		if strings.EqualFold(k, ref) {
			return k, true
		}
	}
	var match string
	for _, k := range c.keys {
		if strings.EqualFold(ShortCode(k), ref) {
			if match != "" {
				return "", false
			}
			match = k
		}
	}
	return match, match != ""
}

// Formatted renders the catalog for model prompts, one "- key: description" per line.
func (c *Catalog) Formatted() string {
	if c.Len() == 0 {
		return NoDocumentsAvailable
	}
	lines := make([]string, 0, c.Len())
	for _, d := range c.Descriptors() {
		lines = append(lines, fmt.Sprintf("- %s: %s", d.Key, d.Description()))
	}
	return strings.Join(lines, "\n")
}

// Markdown renders the catalog for users, one bullet per document with a bold key.
func (c *Catalog) Markdown() string {
	lines := make([]string, 0, c.Len())
	for _, d := range c.Descriptors() {
		lines = append(lines, fmt.Sprintf("- **%s**: %s", d.Key, d.Description()))
	}
	return strings.Join(lines, "\n")
}
