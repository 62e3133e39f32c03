package model

// Document describes one stored file and its descriptive metadata.
// ID, File and URL are assigned at upload time and never change afterwards.
type Document struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	File        string `json:"file"`
	URL         string `json:"url"`
}

// DocumentPatch carries the mutable fields of a Document. Nil fields are left unchanged.
type DocumentPatch struct {
	Title       *string `validate:"omitempty,max=512"`
	Description *string `validate:"omitempty,max=4096"`
	Date        *string `validate:"omitempty,max=64"`
	Type        *string `validate:"omitempty,max=64"`
}

// Empty reports whether the patch changes nothing.
func (p DocumentPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Type == nil
}
