// internal/model/template.go
package model

// Template is a stored message template. Storage and rendering belong to the
// template service; the editor only needs the catalog entries.
type Template struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Format string `db:"format" json:"format"` // html, pdf, docx, ...
}
