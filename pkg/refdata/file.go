package refdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/telemetry/logging"
)

// fileDocument is the YAML shape of one reference-data file. A file may
// carry any combination of the three sections.
type fileDocument struct {
	Customers      []*Customer              `yaml:"customers"`
	ServiceBaggage []*ServiceBaggageRuleset `yaml:"service_baggage"`
	Rates          []rateDocument           `yaml:"rates"`
}

// rateDocument is the YAML shape of one rate row; the rate itself is a
// string so it parses as an exact decimal, never a float.
type rateDocument struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Rate     string `yaml:"rate"`
	Decimals uint8  `yaml:"decimals"`
}

// FileSource loads reference data from YAML files on disk into a
// MemoryStore. The path can be a single file or a directory; for a
// directory all .yaml and .yml files are loaded.
type FileSource struct {
	path   string
	store  *MemoryStore
	logger *logging.Logger
}

// NewFileSource creates a file-based reference-data source backed by the
// given store.
func NewFileSource(path string, store *MemoryStore, logger *logging.Logger) *FileSource {
	if logger == nil {
		logger = logging.Default()
	}
	return &FileSource{path: path, store: store, logger: logger}
}

// Store returns the backing store.
func (s *FileSource) Store() *MemoryStore {
	return s.store
}

// Load reads all reference-data files and atomically replaces the store
// contents. A reload that fails to parse leaves the store untouched.
func (s *FileSource) Load() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var docs []fileDocument
	if info.IsDir() {
		docs, err = s.loadDirectory()
	} else {
		var doc fileDocument
		doc, err = s.loadFile(s.path)
		docs = []fileDocument{doc}
	}
	if err != nil {
		return err
	}

	var customers []*Customer
	var rulesets []*ServiceBaggageRuleset
	var rates []Rate
	for _, doc := range docs {
		customers = append(customers, doc.Customers...)
		rulesets = append(rulesets, doc.ServiceBaggage...)
		for _, rd := range doc.Rates {
			rate, err := decimal.NewFromString(rd.Rate)
			if err != nil {
				return fmt.Errorf("invalid rate %q for %s-%s: %w", rd.Rate, rd.From, rd.To, err)
			}
			rates = append(rates, Rate{
				From:     money.CurrencyCode(rd.From),
				To:       money.CurrencyCode(rd.To),
				Rate:     rate,
				Decimals: rd.Decimals,
			})
		}
	}

	for _, c := range customers {
		if c.PCC == "" {
			return fmt.Errorf("customer record without PCC in %q", s.path)
		}
	}
	for _, rs := range rulesets {
		if rs.Vendor == "" || rs.ItemNo == 0 {
			return fmt.Errorf("service-baggage ruleset without vendor/item number in %q", s.path)
		}
	}

	s.store.ReplaceAll(customers, rulesets, rates)

	s.logger.Info("loaded reference data",
		"path", s.path,
		"customers", len(customers),
		"service_baggage", len(rulesets),
		"rates", len(rates),
	)
	return nil
}

// loadDirectory loads every YAML file under the directory.
func (s *FileSource) loadDirectory() ([]fileDocument, error) {
	var docs []fileDocument

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		doc, err := s.loadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}
	return docs, nil
}

// loadFile parses a single reference-data file.
func (s *FileSource) loadFile(path string) (fileDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileDocument{}, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("failed to parse reference-data file %q: %w", path, err)
	}

	s.logger.Debug("loaded reference-data file",
		"path", path,
		"customers", len(doc.Customers),
		"service_baggage", len(doc.ServiceBaggage),
		"rates", len(doc.Rates),
	)
	return doc, nil
}
