package dungeon

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/zyedidia/generic/mapset"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

// TemplateDefinition is one room template as written in the catalog file.
type TemplateDefinition struct {
	Name     string   `yaml:"name"`
	Reserved bool     `yaml:"reserved"` // only used for goal-chain attachment
	Rows     []string `yaml:"rows"`
}

// CatalogFile is the structure of a templates YAML file.
type CatalogFile struct {
	Templates []TemplateDefinition `yaml:"templates"`
}

// Catalog is the read-only set of room templates available to the generator.
type Catalog struct {
	templates []*RoomTemplate
	byName    map[string]*RoomTemplate
}

// DefaultCatalog returns the built-in metal labyrinth templates.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultTemplatesYAML)
}

// LoadCatalog reads a templates YAML file from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a catalog from YAML and validates every template.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse templates YAML: %w", err)
	}

	templates := make([]*RoomTemplate, 0, len(file.Templates))
	for _, def := range file.Templates {
		t, err := NewRoomTemplate(def.Name, def.Rows, def.Reserved)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	c, err := NewCatalog(templates...)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewCatalog groups already parsed templates. Names must be unique.
func NewCatalog(templates ...*RoomTemplate) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*RoomTemplate, len(templates))}
	for _, t := range templates {
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate template name %q", ErrInvalidTemplate, t.Name)
		}
		c.byName[t.Name] = t
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// Get returns a template by name.
func (c *Catalog) Get(name string) (*RoomTemplate, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Templates returns every template in catalog order.
func (c *Catalog) Templates() []*RoomTemplate {
	out := make([]*RoomTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// Growth returns the templates that may be picked while growing a dungeon.
func (c *Catalog) Growth() []*RoomTemplate {
	var out []*RoomTemplate
	for _, t := range c.templates {
		if !t.Reserved {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks every template and that the growth set can connect on
// every side it exposes.
func (c *Catalog) Validate() error {
	var errs []error
	for _, t := range c.templates {
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	exposed := mapset.New[Direction]()
	matchable := mapset.New[Direction]()
	for _, t := range c.Growth() {
		for _, dir := range t.Doors() {
			exposed.Put(dir)
			matchable.Put(dir.Opposite())
		}
	}
	exposed.Each(func(dir Direction) {
		if !matchable.Has(dir) {
			errs = append(errs, fmt.Errorf("%w: no growth template can connect to a %s door", ErrInvalidTemplate, dir))
		}
	})

	return errors.Join(errs...)
}
