package model

// Document is a source file split into its parts by the front matter
// extractor.
type Document struct {
	Body        string
	FrontMatter map[string]interface{}
	// Title is the text of a leading "# heading", nil when there was none.
	Title *string
}

// TitleValue returns the extracted title as a template value: the string, or
// an untyped nil when no heading was found.
func (d Document) TitleValue() interface{} {
	if d.Title == nil {
		return nil
	}
	return *d.Title
}

// SiteData holds the site-wide variables loaded from the data file.
type SiteData map[string]interface{}
