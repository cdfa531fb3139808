// Package dataset loads the nested country statistics file and resolves
// country names against it.
package dataset

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"worldquest/internal/config"
	"worldquest/internal/models"
	"worldquest/internal/observability"
	contextutils "worldquest/internal/utils"
)

// aliasPairs maps common naming variants to the conventions different data
// sources use. Lookup consults the table in both directions.
var aliasPairs = [][2]string{
	{"Ivory Coast", "Cote d'Ivoire"},
	{"UK", "United Kingdom"},
	{"USA", "United States"},
	{"Burma", "Myanmar"},
	{"Czechia", "Czech Republic"},
	{"Swaziland", "eSwatini"},
	{"Cape Verde", "Cabo Verde"},
	{"East Timor", "Timor-Leste"},
	{"South Korea", "Korea, Rep."},
	{"North Korea", "Korea, Dem. Rep."},
	{"Laos", "Lao"},
	{"Democratic Republic of the Congo", "Congo, Dem. Rep."},
	{"Republic of the Congo", "Congo, Rep."},
	{"Micronesia", "Micronesia, Fed. Sts."},
	{"Egypt", "Egypt, Arab Rep."},
	{"Yemen", "Yemen, Rep."},
	{"Gambia", "Gambia, The"},
	{"Bahamas", "Bahamas, The"},
	{"Kyrgyzstan", "Kyrgyz Republic"},
	{"Slovakia", "Slovak Republic"},
	{"Saint Kitts and Nevis", "St. Kitts and Nevis"},
	{"Saint Lucia", "St. Lucia"},
	{"Saint Vincent and the Grenadines", "St. Vincent and the Grenadines"},
}

// Service holds the immutable statistics dataset. Load it once at startup;
// all lookups after that are read-only and need no locking.
type Service struct {
	path   string
	logger *observability.Logger
	data   models.Dataset
}

// NewService creates a dataset service for the configured file path.
func NewService(cfg *config.DatasetConfig, logger *observability.Logger) *Service {
	return &Service{path: cfg.Path, logger: logger}
}

// Load reads and parses the dataset file.
func (s *Service) Load(ctx context.Context) (err error) {
	ctx, span := observability.TraceDatasetFunction(ctx, "Load")
	defer observability.FinishSpan(span, &err)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatasetUnavailable, "failed to read dataset %s: %w", s.path, err)
	}

	var data models.Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatasetUnavailable, "failed to parse dataset %s: %w", s.path, err)
	}

	s.data = data
	s.logger.Info(ctx, "Dataset loaded", map[string]interface{}{
		"path":      s.path,
		"countries": len(data),
	})
	return nil
}

// CountryData resolves a country name to its dataset entry, trying the name
// as given, then the alias table in both directions, then case variants.
// The second return value is the dataset key the entry was found under.
func (s *Service) CountryData(name string) (models.CountryData, string, bool) {
	if data, ok := s.data[name]; ok {
		return data, name, true
	}

	for _, candidate := range aliasCandidates(name) {
		if data, ok := s.data[candidate]; ok {
			return data, candidate, true
		}
	}

	for _, candidate := range caseVariants(name) {
		if data, ok := s.data[candidate]; ok {
			return data, candidate, true
		}
	}

	return nil, "", false
}

// CountryNames returns all dataset keys in sorted order.
func (s *Service) CountryNames() []string {
	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loaded reports whether the dataset has been loaded.
func (s *Service) Loaded() bool {
	return s.data != nil
}

func aliasCandidates(name string) []string {
	var out []string
	for _, pair := range aliasPairs {
		switch {
		case strings.EqualFold(pair[0], name):
			out = append(out, pair[1])
		case strings.EqualFold(pair[1], name):
			out = append(out, pair[0])
		}
	}
	return out
}

func caseVariants(name string) []string {
	return []string{
		titleCase(name),
		strings.ToUpper(name),
		strings.ToLower(name),
	}
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
