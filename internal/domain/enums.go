package domain

import "strings"

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// ParseStatus represents the lifecycle of an uploaded document.
type ParseStatus string

const (
	ParseStatusUploaded ParseStatus = "uploaded"
	ParseStatusParsing  ParseStatus = "parsing"
	ParseStatusParsed   ParseStatus = "parsed"
	ParseStatusFailed   ParseStatus = "failed"
)

// Category is the coarse classification assigned to a normalized element.
type Category string

const (
	CategoryTable  Category = "table"
	CategoryFigure Category = "figure"
	CategoryHeader Category = "header"
	CategoryText   Category = "text"
	CategoryList   Category = "list"
	CategoryFooter Category = "footer"
	CategoryOther  Category = "other"
)

// categoryByLabel maps lowercased source type labels to categories. This is
// the one lookup shared by classification, view bucketing, and presentation
// dispatch; it must not be duplicated elsewhere.
var categoryByLabel = map[string]Category{
	"table":          CategoryTable,
	"tables":         CategoryTable,
	"figure":         CategoryFigure,
	"image":          CategoryFigure,
	"picture":        CategoryFigure,
	"chart":          CategoryFigure,
	"diagram":        CategoryFigure,
	"header":         CategoryHeader,
	"page_header":    CategoryHeader,
	"title":          CategoryHeader,
	"heading":        CategoryHeader,
	"section_header": CategoryHeader,
	"text":           CategoryText,
	"paragraph":      CategoryText,
	"body":           CategoryText,
	"list":           CategoryList,
	"list_item":      CategoryList,
	"bullet":         CategoryList,
	"footer":         CategoryFooter,
	"page_footer":    CategoryFooter,
}

// Classify maps a raw element type label to its Category. Matching is
// case-insensitive and exact after lowercasing; unknown or empty labels
// map to CategoryOther.
func Classify(label string) Category {
	if c, ok := categoryByLabel[strings.ToLower(label)]; ok {
		return c
	}
	return CategoryOther
}
