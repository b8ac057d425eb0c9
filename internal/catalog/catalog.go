package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the document major version this package understands.
const SupportedMajor = "v1"

//go:embed catalog.yaml
var defaultDocument []byte

//go:embed catalog.schema.json
var schemaDocument []byte

const schemaURL = "schema://dailyquest/catalog.json"

// document is the on-disk shape of a catalog.
type document struct {
	Version string                `yaml:"version"`
	Plans   map[string][]questDoc `yaml:"plans"`
	Routes  []routeDoc            `yaml:"routes"`
}

type questDoc struct {
	Title      string     `yaml:"title"`
	Difficulty int        `yaml:"difficulty"`
	Exercises  []Exercise `yaml:"exercises"`
}

type routeDoc struct {
	Gender      Gender      `yaml:"gender"`
	Class       Class       `yaml:"class"`
	Environment Environment `yaml:"environment"`
	Frequency   int         `yaml:"frequency"`
	Plan        string      `yaml:"plan"`
}

// Catalog maps profile keys to quest sequences. It is immutable after Load.
type Catalog struct {
	version string
	routes  map[Key]*Sequence
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(bytes.NewReader(defaultDocument))
	})
	return defaultCatalog, defaultErr
}

// Load decodes and validates a YAML catalog document.
func Load(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validateDocument(&doc); err != nil {
		return nil, err
	}

	sequences := make(map[string]*Sequence, len(doc.Plans))
	for name, days := range doc.Plans {
		seq := &Sequence{plan: name, quests: make([]Quest, len(days))}
		for i, d := range days {
			q := Quest{
				Day:        i + 1,
				Title:      d.Title,
				Difficulty: d.Difficulty,
				Exercises:  d.Exercises,
			}
			for _, ex := range d.Exercises {
				q.TotalReps += ex.Reps
				q.TotalSeconds += ex.Seconds
			}
			seq.quests[i] = q
		}
		sequences[name] = seq
	}

	c := &Catalog{
		version: doc.Version,
		routes:  make(map[Key]*Sequence, len(doc.Routes)),
	}
	for _, rt := range doc.Routes {
		key := Key{Gender: rt.Gender, Class: rt.Class, Environment: rt.Environment, Frequency: rt.Frequency}
		c.routes[key] = sequences[rt.Plan]
	}
	return c, nil
}

// Version returns the semantic version declared by the document.
func (c *Catalog) Version() string { return c.version }

// Resolve returns the sequence for key. No defaults are applied here.
func (c *Catalog) Resolve(key Key) (*Sequence, error) {
	seq, ok := c.routes[key]
	if !ok {
		return nil, &MissingError{Key: key}
	}
	return seq, nil
}

// Keys returns every routed key in a stable order.
func (c *Catalog) Keys() []Key {
	keys := make([]Key, 0, len(c.routes))
	for k := range c.routes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaDocument))
		if err != nil {
			schemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validateSchema checks the raw YAML against the embedded JSON Schema.
// The YAML tree is round-tripped through JSON so the validator sees the
// same value types it would for a JSON document.
func validateSchema(raw []byte) error {
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	js, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("convert catalog to json: %w", err)
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return fmt.Errorf("parse catalog json: %w", err)
	}

	compiled, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return &InvalidError{Problems: []string{fmt.Sprintf("schema validation failed: %v", err)}}
	}
	return nil
}

// validateDocument performs the structural checks the schema cannot express.
func validateDocument(doc *document) error {
	var errs []string

	if !semver.IsValid(doc.Version) {
		errs = append(errs, fmt.Sprintf("version %q is not a semantic version", doc.Version))
	} else if semver.Major(doc.Version) != SupportedMajor {
		errs = append(errs, fmt.Sprintf("version %s is not supported (want %s.x)", doc.Version, SupportedMajor))
	}

	seen := make(map[Key]bool, len(doc.Routes))
	for _, rt := range doc.Routes {
		key := Key{Gender: rt.Gender, Class: rt.Class, Environment: rt.Environment, Frequency: rt.Frequency}
		if seen[key] {
			errs = append(errs, fmt.Sprintf("duplicate route %s", key))
		}
		seen[key] = true
		if _, ok := doc.Plans[rt.Plan]; !ok {
			errs = append(errs, fmt.Sprintf("route %s references unknown plan %q", key, rt.Plan))
		}
	}

	if len(errs) > 0 {
		return &InvalidError{Problems: errs}
	}
	return nil
}
