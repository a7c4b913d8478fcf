// Package normalize converts raw ai_parse_document responses into the
// uniform element model. Responses arrive in several shapes: a wrapped
// document object, a bare elements array, a flat content/text field, or
// plain text. Normalization is total; any input yields a usable
// NormalizedDocument, degraded at worst, never an error.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"docsight/internal/domain"
)

// Normalize builds a NormalizedDocument from raw parse response content.
// Empty input yields an empty document, malformed JSON falls back to a
// plain-text document, and unrecognized structured shapes degrade to a
// metadata-only document. RawContent always holds the input verbatim.
func Normalize(content string) *domain.NormalizedDocument {
	doc := &domain.NormalizedDocument{
		Elements:   []domain.Element{},
		RawContent: content,
		Tables:     []domain.Element{},
		Figures:    []domain.Element{},
		Headers:    []domain.Element{},
	}

	if content == "" {
		return doc
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		doc.PlainText = content
		return doc
	}
	doc.IsStructured = true

	// Ordered shape match, first hit wins. Unrecognized keys stay
	// available through Metadata.
	var items []interface{}
	switch v := parsed.(type) {
	case map[string]interface{}:
		if inner, ok := v["document"].(map[string]interface{}); ok {
			items, _ = inner["elements"].([]interface{})
			doc.Metadata = metadataExcept(inner, "elements")
		} else if elems, ok := v["elements"]; ok {
			items, _ = elems.([]interface{})
			doc.Metadata = metadataExcept(v, "elements")
		} else if c, ok := v["content"]; ok {
			doc.PlainText = stringify(c)
			return doc
		} else if t, ok := v["text"]; ok {
			doc.PlainText = stringify(t)
			return doc
		} else {
			doc.Metadata = v
			return doc
		}
	case []interface{}:
		items = v
	default:
		// scalar JSON carries no elements and no text projection
		return doc
	}

	var paragraphs []string
	for _, item := range items {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		elem := buildElement(raw)
		doc.Elements = append(doc.Elements, elem)

		switch elem.Category {
		case domain.CategoryTable:
			doc.Tables = append(doc.Tables, elem)
		case domain.CategoryFigure:
			doc.Figures = append(doc.Figures, elem)
		case domain.CategoryHeader:
			doc.Headers = append(doc.Headers, elem)
		}

		if text, ok := ParagraphText(elem); ok {
			paragraphs = append(paragraphs, text)
		}
	}
	doc.PlainText = strings.Join(paragraphs, "\n\n")

	return doc
}

// ParagraphText returns the plain-text paragraph an element contributes:
// its content, or a bracketed category/description line for content-less
// elements like figures. Elements with neither contribute nothing.
func ParagraphText(elem domain.Element) (string, bool) {
	if elem.Content != "" {
		return elem.Content, true
	}
	if elem.Description != "" {
		return fmt.Sprintf("[%s: %s]", elem.Category, elem.Description), true
	}
	return "", false
}

func buildElement(raw map[string]interface{}) domain.Element {
	label, _ := raw["type"].(string)
	elem := domain.Element{
		Category: domain.Classify(label),
		ID:       raw["id"],
		PageID:   resolvePageID(raw),
		Raw:      raw,
	}
	if c, ok := raw["content"]; ok && c != nil {
		elem.Content = stringify(c)
	}
	if d, ok := raw["description"]; ok && d != nil {
		elem.Description = stringify(d)
	}
	if bbox, ok := raw["bbox"]; ok {
		elem.BoundingBox = bbox
	} else {
		elem.BoundingBox = raw["coord"]
	}
	return elem
}

// resolvePageID applies the page precedence rules: the element's own
// page_id field wins, even when unusable; otherwise the first bbox
// entry's page_id is used when bbox is a list of mappings; otherwise the
// element has no page.
func resolvePageID(raw map[string]interface{}) *int {
	if v, present := raw["page_id"]; present {
		if id, ok := pageNumber(v); ok {
			return &id
		}
		return nil
	}
	if bbox, ok := raw["bbox"].([]interface{}); ok && len(bbox) > 0 {
		if first, ok := bbox[0].(map[string]interface{}); ok {
			if id, ok := pageNumber(first["page_id"]); ok {
				return &id
			}
		}
	}
	return nil
}

func pageNumber(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func metadataExcept(m map[string]interface{}, key string) map[string]interface{} {
	meta := make(map[string]interface{}, len(m))
	for k, v := range m {
		if k == key {
			continue
		}
		meta[k] = v
	}
	return meta
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
