package document

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/relbench/internal/domain"
)

// MaxIDLength is the maximum item identifier length.
const MaxIDLength = 256

// Field names recognized on incoming records.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldBrand       = "brand"
	FieldTags        = "tags"
)

// Document is a catalog item with named text fields (immutable value object).
// Missing fields are empty strings.
type Document struct {
	id          string
	title       string
	description string
	category    string
	brand       string
	tags        string
}

// Fields holds the optional text fields of a document.
type Fields struct {
	Title       string
	Description string
	Category    string
	Brand       string
	Tags        string
}

// New validates and creates a Document.
func New(id string, f Fields) (Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Document{}, fmt.Errorf("item ID is required: %w", domain.ErrInvalidInput)
	}
	if len(id) > MaxIDLength {
		return Document{}, fmt.Errorf("item ID too long (max %d): %w", MaxIDLength, domain.ErrInvalidInput)
	}
	return Document{
		id:          id,
		title:       f.Title,
		description: f.Description,
		category:    f.Category,
		brand:       f.Brand,
		tags:        f.Tags,
	}, nil
}

// FromFields coerces a loose field-name→string record into a Document.
// The identifier is read from "id" or "item_id"; unknown keys are ignored.
func FromFields(record map[string]string) (Document, error) {
	id := record["id"]
	if id == "" {
		id = record["item_id"]
	}
	return New(id, Fields{
		Title:       record[FieldTitle],
		Description: record[FieldDescription],
		Category:    record[FieldCategory],
		Brand:       record[FieldBrand],
		Tags:        record[FieldTags],
	})
}

// ID returns the stable item identifier.
func (d *Document) ID() string { return d.id }

// Title returns the title field.
func (d *Document) Title() string { return d.title }

// Description returns the description field.
func (d *Document) Description() string { return d.description }

// Category returns the category field.
func (d *Document) Category() string { return d.category }

// Brand returns the brand field.
func (d *Document) Brand() string { return d.brand }

// Tags returns the tags field.
func (d *Document) Tags() string { return d.tags }

// Fields returns the record form of the document, including the id.
func (d *Document) Fields() map[string]string {
	return map[string]string{
		"id":             d.id,
		FieldTitle:       d.title,
		FieldDescription: d.description,
		FieldCategory:    d.category,
		FieldBrand:       d.brand,
		FieldTags:        d.tags,
	}
}

// Text returns all non-empty fields joined by single spaces.
func (d *Document) Text() string {
	return joinNonEmpty(d.title, d.description, d.category, d.brand, d.tags)
}

// WeightedText is Text with the title repeated once more for emphasis.
func (d *Document) WeightedText() string {
	return joinNonEmpty(d.title, d.title, d.description, d.category, d.brand, d.tags)
}

func joinNonEmpty(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

// Corpus is an ordered collection of documents. Order is significant: it breaks
// score ties in every ranking.
type Corpus []Document

// IDs returns the item identifiers in corpus order.
func (c Corpus) IDs() []string {
	ids := make([]string, len(c))
	for i := range c {
		ids[i] = c[i].id
	}
	return ids
}

// Validate rejects duplicate item identifiers.
func (c Corpus) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i := range c {
		if _, dup := seen[c[i].id]; dup {
			return fmt.Errorf("duplicate item ID %q: %w", c[i].id, domain.ErrInvalidInput)
		}
		seen[c[i].id] = struct{}{}
	}
	return nil
}
