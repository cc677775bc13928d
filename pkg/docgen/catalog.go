package docgen

import (
	"encoding/json"
	"fmt"
	"io"
)

// FieldKind classifies a fillable template field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindDate     FieldKind = "date"
	KindCheckbox FieldKind = "checkbox"
	KindDropdown FieldKind = "dropdown"
)

// TemplateField is one named fillable field of a document template.
type TemplateField struct {
	Name string
	Kind FieldKind

	// Options is the enumerated value domain for dropdown fields.
	Options []string
}

// DocumentFieldMap is the static catalog of a named template: every
// fillable field with its kind and accepted value domain. Catalogs are
// immutable once loaded.
type DocumentFieldMap struct {
	TemplateID string
	fields     map[string]TemplateField
}

// NewDocumentFieldMap builds a catalog from a field list.
func NewDocumentFieldMap(templateID string, fields []TemplateField) *DocumentFieldMap {
	m := &DocumentFieldMap{
		TemplateID: templateID,
		fields:     make(map[string]TemplateField, len(fields)),
	}
	for _, f := range fields {
		m.fields[f.Name] = f
	}
	return m
}

// Field returns the catalog entry for a template field name.
func (m *DocumentFieldMap) Field(name string) (TemplateField, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Has reports whether the template defines the named field.
func (m *DocumentFieldMap) Has(name string) bool {
	_, ok := m.fields[name]
	return ok
}

// Len returns the number of fields in the catalog.
func (m *DocumentFieldMap) Len() int { return len(m.fields) }

// catalogExport mirrors the pdfcpu form-export JSON layout, which is how
// catalogs are produced from the actual template ("pdfcpu form export").
// Only the parts the generator needs are decoded.
type catalogExport struct {
	Forms []struct {
		TextFields []struct {
			Name string `json:"name"`
		} `json:"textfield"`
		DateFields []struct {
			Name string `json:"name"`
		} `json:"datefield"`
		Checkboxes []struct {
			Name string `json:"name"`
		} `json:"checkbox"`
		RadioGroups []struct {
			Name    string   `json:"name"`
			Options []string `json:"options"`
		} `json:"radiobuttongroup"`
		Comboboxes []struct {
			Name    string   `json:"name"`
			Options []string `json:"options"`
		} `json:"combobox"`
		Listboxes []struct {
			Name    string   `json:"name"`
			Options []string `json:"options"`
		} `json:"listbox"`
	} `json:"forms"`
}

// LoadCatalog reads a template field catalog from pdfcpu form-export JSON.
// The export is produced offline from the template PDF, so the catalog
// always reflects the fields the template actually carries.
func LoadCatalog(templateID string, r io.Reader) (*DocumentFieldMap, error) {
	var export catalogExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("docgen: parsing catalog for %s: %w", templateID, err)
	}
	if len(export.Forms) == 0 {
		return nil, fmt.Errorf("docgen: catalog for %s contains no form", templateID)
	}

	var fields []TemplateField
	for _, form := range export.Forms {
		for _, f := range form.TextFields {
			fields = append(fields, TemplateField{Name: f.Name, Kind: KindText})
		}
		for _, f := range form.DateFields {
			fields = append(fields, TemplateField{Name: f.Name, Kind: KindDate})
		}
		for _, f := range form.Checkboxes {
			fields = append(fields, TemplateField{Name: f.Name, Kind: KindCheckbox})
		}
		for _, f := range form.RadioGroups {
			fields = append(fields, TemplateField{Name: f.Name, Kind: KindDropdown, Options: f.Options})
		}
		for _, f := range form.Comboboxes {
			fields = append(fields, TemplateField{Name: f.Name, Kind: KindDropdown, Options: f.Options})
		}
		for _, f := range form.Listboxes {
			fields = append(fields, TemplateField{Name: f.Name, Kind: KindDropdown, Options: f.Options})
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("docgen: catalog for %s defines no fillable fields", templateID)
	}

	return NewDocumentFieldMap(templateID, fields), nil
}
