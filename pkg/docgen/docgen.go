// Package docgen transforms typed application data into exact field
// placements on fixed third-party document templates (official government
// PDF forms).
//
// The generator never writes into a template blindly: every logical field
// goes through a static mapping table (ordered template-name candidates,
// kind-specific encoding, conditional groups keyed by categorical
// selectors) and is checked against the template's field catalog. Fields
// that cannot be mapped are reported as diagnostics; only an unreadable
// template or a failed serialization aborts a generation.
package docgen

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hirewire/onboard/pkg/api"
)

var (
	// ErrUnknownTemplate is returned for template IDs without a registered
	// mapping table and catalog.
	ErrUnknownTemplate = errors.New("docgen: unknown template")

	// ErrTemplateUnavailable wraps failures to load the template bytes.
	// This is a hard failure: no partial document is returned.
	ErrTemplateUnavailable = errors.New("docgen: template unavailable")
)

// TemplateArtifact is a read-only template as served by a TemplateSource.
type TemplateArtifact struct {
	Bytes    []byte
	Filename string
}

// TemplateSource provides the fixed binary templates, versioned by ID.
type TemplateSource interface {
	Template(ctx context.Context, templateID string) (TemplateArtifact, error)
}

// FillPlan is the resolved set of template field assignments for one
// generation: plain text (dates included, already formatted), checkbox
// marks, and dropdown selections.
type FillPlan struct {
	Text    map[string]string
	Checks  map[string]bool
	Choices map[string]string
}

func newFillPlan() FillPlan {
	return FillPlan{
		Text:    make(map[string]string),
		Checks:  make(map[string]bool),
		Choices: make(map[string]string),
	}
}

// FormFiller serializes a fill plan onto template bytes.
type FormFiller interface {
	Fill(ctx context.Context, template []byte, plan FillPlan) ([]byte, error)
}

// FilledDocument is the output artifact of one generation request.
type FilledDocument struct {
	TemplateID string
	Filename   string
	Bytes      []byte

	// Mapped lists the template field names that received a value.
	Mapped []string

	// Unmapped lists logical fields that could not be placed (optional
	// candidates missing from this template revision, values outside a
	// dropdown domain with no fallback). Diagnostics only.
	Unmapped []string

	// MissingRequired lists required logical fields with no usable value
	// or no live candidate. The caller must block finalization when this
	// is non-empty.
	MissingRequired []string
}

// BlocksFinalization reports whether a required field failed to map.
func (d *FilledDocument) BlocksFinalization() bool {
	return len(d.MissingRequired) > 0
}

// Config holds generator knobs. Zero values fall back to defaults.
type Config struct {
	// Timeout bounds one generation call (template fetch + serialization).
	// Default 30s.
	Timeout time.Duration
}

// Generator implements the field-mapping document generator.
type Generator struct {
	source   TemplateSource
	filler   FormFiller
	catalogs map[string]*DocumentFieldMap
	mappings map[string]TemplateMapping
	obs      api.Observer
	timeout  time.Duration
}

// NewGenerator creates a Generator with the standard onboarding template
// mappings. Catalogs are registered per template via RegisterCatalog.
func NewGenerator(source TemplateSource, filler FormFiller, cfg Config) *Generator {
	return NewGeneratorWithObserver(source, filler, cfg, nil)
}

// NewGeneratorWithObserver is NewGenerator with an Observer attached.
func NewGeneratorWithObserver(source TemplateSource, filler FormFiller, cfg Config, obs api.Observer) *Generator {
	if obs == nil {
		obs = api.NoopObserver{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		source:   source,
		filler:   filler,
		catalogs: make(map[string]*DocumentFieldMap),
		mappings: DefaultMappings(),
		obs:      obs,
		timeout:  timeout,
	}
}

// RegisterMapping installs or replaces the mapping table for a template.
func (g *Generator) RegisterMapping(m TemplateMapping) {
	g.mappings[m.TemplateID] = m
}

// RegisterCatalog installs the field catalog for a template after checking
// the mapping table against it: every required mapping and every required
// checkbox group must have at least one candidate the template actually
// carries. Drifted optional candidates are tolerated.
func (g *Generator) RegisterCatalog(cat *DocumentFieldMap) error {
	mapping, ok := g.mappings[cat.TemplateID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, cat.TemplateID)
	}

	var dead []string
	checkRequired := func(logical string, required bool, candidates []string) {
		if !required {
			return
		}
		for _, c := range candidates {
			if cat.Has(c) {
				return
			}
		}
		dead = append(dead, logical)
	}

	for _, fm := range mapping.Fields {
		checkRequired(fm.Logical, fm.Required, fm.Candidates)
	}
	for _, grp := range mapping.Groups {
		for _, fm := range grp.Fields {
			checkRequired(grp.Selector+"/"+fm.Logical, fm.Required, fm.Candidates)
		}
	}
	for _, cb := range mapping.Checkboxes {
		if !cb.Required {
			continue
		}
		for value, candidates := range cb.Options {
			checkRequired(cb.Logical+"="+value, true, candidates)
		}
	}

	if len(dead) > 0 {
		sort.Strings(dead)
		return fmt.Errorf("docgen: catalog %s does not satisfy required mappings: %v", cat.TemplateID, dead)
	}

	g.catalogs[cat.TemplateID] = cat
	return nil
}

// Generate loads the template, resolves every mapped field, and serializes
// the filled document. A missing or unreadable template is a hard failure;
// unmapped fields are reported in the returned diagnostics instead of
// failing the call.
func (g *Generator) Generate(ctx context.Context, templateID string, data api.FormData) (*FilledDocument, error) {
	start := time.Now()

	doc, err := g.generate(ctx, templateID, data)
	unmapped := 0
	if doc != nil {
		unmapped = len(doc.Unmapped) + len(doc.MissingRequired)
	}
	g.obs.OnDocumentGenerated(ctx, templateID, unmapped, err, time.Since(start))

	return doc, err
}

func (g *Generator) generate(ctx context.Context, templateID string, data api.FormData) (*FilledDocument, error) {
	mapping, ok := g.mappings[templateID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}
	cat, ok := g.catalogs[templateID]
	if !ok {
		return nil, fmt.Errorf("%w: no catalog registered for %s", ErrUnknownTemplate, templateID)
	}

	data = withDerivedFields(data)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	art, err := g.source.Template(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateUnavailable, templateID, err)
	}

	doc := &FilledDocument{
		TemplateID: templateID,
		Filename:   art.Filename,
	}
	plan := newFillPlan()

	for _, fm := range mapping.Fields {
		g.applyField(cat, fm, data, &plan, doc)
	}
	// Conditional groups: the categorical selector decides whether the
	// group applies at all; inactive branches are never populated.
	for _, grp := range mapping.Groups {
		if !grp.active(data) {
			continue
		}
		for _, fm := range grp.Fields {
			g.applyField(cat, fm, data, &plan, doc)
		}
	}
	for _, cb := range mapping.Checkboxes {
		g.applyCheckbox(cat, cb, data, &plan, doc)
	}

	filled, err := g.filler.Fill(ctx, art.Bytes, plan)
	if err != nil {
		return nil, fmt.Errorf("docgen: serializing %s: %w", templateID, err)
	}
	doc.Bytes = filled

	sort.Strings(doc.Mapped)
	sort.Strings(doc.Unmapped)
	sort.Strings(doc.MissingRequired)
	return doc, nil
}

// applyField resolves one logical field through its candidate list and
// encodes the value per field kind.
func (g *Generator) applyField(cat *DocumentFieldMap, fm FieldMapping, data api.FormData, plan *FillPlan, doc *FilledDocument) {
	name := firstLive(cat, fm.Candidates)
	if name == "" {
		// No candidate survived this template revision.
		if fm.Required {
			doc.MissingRequired = append(doc.MissingRequired, fm.Logical)
		} else {
			doc.Unmapped = append(doc.Unmapped, fm.Logical)
		}
		return
	}

	raw := data[fm.Logical]
	if raw == "" {
		if fm.Required {
			doc.MissingRequired = append(doc.MissingRequired, fm.Logical)
		}
		return
	}

	switch fm.Kind {
	case KindDate:
		formatted := FormatDate(raw)
		if formatted == "" {
			// Never propagate a partially parsed date.
			if fm.Required {
				doc.MissingRequired = append(doc.MissingRequired, fm.Logical)
			} else {
				doc.Unmapped = append(doc.Unmapped, fm.Logical)
			}
			return
		}
		plan.Text[name] = formatted
		doc.Mapped = append(doc.Mapped, name)

	case KindDropdown:
		tf, _ := cat.Field(name)
		if inDomain(tf.Options, raw) {
			plan.Choices[name] = raw
			doc.Mapped = append(doc.Mapped, name)
			return
		}
		// Value outside the enumerated domain: write the adjacent
		// free-text field when the template has one.
		if fb := firstLive(cat, fm.TextFallback); fb != "" {
			plan.Text[fb] = normalize(raw, fm.Normalize)
			doc.Mapped = append(doc.Mapped, fb)
			return
		}
		if fm.Required {
			doc.MissingRequired = append(doc.MissingRequired, fm.Logical)
		} else {
			doc.Unmapped = append(doc.Unmapped, fm.Logical)
		}

	default:
		plan.Text[name] = normalize(raw, fm.Normalize)
		doc.Mapped = append(doc.Mapped, name)
	}
}

// applyCheckbox maps one categorical value onto exactly one checkbox of a
// mutually exclusive group. Siblings stay at the template default
// (unchecked).
func (g *Generator) applyCheckbox(cat *DocumentFieldMap, cb CheckboxGroup, data api.FormData, plan *FillPlan, doc *FilledDocument) {
	value := data[cb.Logical]
	if value == "" {
		if cb.Required {
			doc.MissingRequired = append(doc.MissingRequired, cb.Logical)
		}
		return
	}

	candidates, ok := cb.Options[value]
	if !ok {
		if cb.Required {
			doc.MissingRequired = append(doc.MissingRequired, cb.Logical)
		} else {
			doc.Unmapped = append(doc.Unmapped, cb.Logical)
		}
		return
	}

	name := firstLive(cat, candidates)
	if name == "" {
		if cb.Required {
			doc.MissingRequired = append(doc.MissingRequired, cb.Logical)
		} else {
			doc.Unmapped = append(doc.Unmapped, cb.Logical)
		}
		return
	}

	plan.Checks[name] = true
	doc.Mapped = append(doc.Mapped, name)
}

// firstLive returns the first candidate present in the catalog.
func firstLive(cat *DocumentFieldMap, candidates []string) string {
	for _, c := range candidates {
		if cat.Has(c) {
			return c
		}
	}
	return ""
}

func inDomain(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
