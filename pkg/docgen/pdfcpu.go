package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFFormFiller serializes fill plans onto AcroForm templates using pdfcpu.
type PDFFormFiller struct {
	conf *model.Configuration
}

var _ FormFiller = (*PDFFormFiller)(nil)

// NewPDFFormFiller returns a filler with pdfcpu's default configuration.
func NewPDFFormFiller() *PDFFormFiller {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFFormFiller{conf: conf}
}

// The structures below mirror pdfcpu's form JSON, the same format its
// "form fill" command consumes.

type pdfTextField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type pdfCheckbox struct {
	Name   string `json:"name"`
	Value  bool   `json:"value"`
	Locked bool   `json:"locked"`
}

type pdfChoice struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type pdfForm struct {
	TextFields []pdfTextField `json:"textfield,omitempty"`
	Checkboxes []pdfCheckbox  `json:"checkbox,omitempty"`
	Comboboxes []pdfChoice    `json:"combobox,omitempty"`
}

type pdfFormData struct {
	Forms []pdfForm `json:"forms"`
}

// Fill writes the plan into the template's form fields and returns the
// serialized document bytes.
func (f *PDFFormFiller) Fill(ctx context.Context, template []byte, plan FillPlan) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var form pdfForm
	for name, value := range plan.Text {
		form.TextFields = append(form.TextFields, pdfTextField{Name: name, Value: value})
	}
	for name, checked := range plan.Checks {
		form.Checkboxes = append(form.Checkboxes, pdfCheckbox{Name: name, Value: checked})
	}
	for name, value := range plan.Choices {
		form.Comboboxes = append(form.Comboboxes, pdfChoice{Name: name, Value: value})
	}

	formJSON, err := json.Marshal(pdfFormData{Forms: []pdfForm{form}})
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := pdfapi.FillForm(bytes.NewReader(template), bytes.NewReader(formJSON), &out, f.conf); err != nil {
		return nil, fmt.Errorf("pdfcpu fill: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DirTemplateSource serves templates from a directory, one PDF per
// template ID. Templates are read-only inputs versioned by filename.
type DirTemplateSource struct {
	Dir string
}

var _ TemplateSource = DirTemplateSource{}

func (s DirTemplateSource) Template(ctx context.Context, templateID string) (TemplateArtifact, error) {
	if err := ctx.Err(); err != nil {
		return TemplateArtifact{}, err
	}

	filename := templateID + ".pdf"
	data, err := os.ReadFile(filepath.Join(s.Dir, filename))
	if err != nil {
		return TemplateArtifact{}, err
	}
	return TemplateArtifact{Bytes: data, Filename: filename}, nil
}

// StaticTemplateSource serves templates from memory, keyed by ID.
// Useful for tests and embedded templates.
type StaticTemplateSource map[string][]byte

var _ TemplateSource = StaticTemplateSource{}

func (s StaticTemplateSource) Template(ctx context.Context, templateID string) (TemplateArtifact, error) {
	if err := ctx.Err(); err != nil {
		return TemplateArtifact{}, err
	}

	data, ok := s[templateID]
	if !ok {
		return TemplateArtifact{}, fmt.Errorf("no template bytes for %s", templateID)
	}
	return TemplateArtifact{Bytes: data, Filename: templateID + ".pdf"}, nil
}
