package valvedash

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode"
)

// NewValveBank creates multiple valves from the cartesian product of
// dimension values.
//
// A bank is useful when a site repeats the same valve layout across zones
// and sectors. Each combination of dimension values produces one valve whose
// name, ID and location come from optional templates:
//
//	valves, err := valvedash.NewValveBank("Irrigation Zone",
//	    valvedash.WithDimensions(map[string][]string{
//	        "zone":   {"A", "B"},
//	        "sector": {"1", "2"},
//	    }),
//	    valvedash.WithNameTemplate("Irrigation Zone {{.zone}}{{.sector}}"),
//	    valvedash.WithLocationTemplate("Sector {{.sector}}"),
//	)
//
// Without a name template, names take the form "Irrigation Zone (1/A)" with
// values ordered by dimension key. Without an ID template, the ID is derived
// from the name. Dimension values are added to each valve as labels.
//
// Returns an error if baseName is blank, no dimensions are given, a template
// is invalid or references an unknown dimension, or two combinations produce
// the same ID.
func NewValveBank(baseName string, opts ...BankOption) ([]Valve, error) {
	if strings.TrimSpace(baseName) == "" {
		return nil, errors.New("base name cannot be empty")
	}

	cfg := &bankConfig{
		staticLabels: make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.dimensions) == 0 {
		return nil, errors.New("at least one dimension required")
	}

	nameTmpl, err := parseBankTemplate("name", cfg.nameTemplate)
	if err != nil {
		return nil, err
	}
	idTmpl, err := parseBankTemplate("id", cfg.idTemplate)
	if err != nil {
		return nil, err
	}
	locationTmpl, err := parseBankTemplate("location", cfg.locationTemplate)
	if err != nil {
		return nil, err
	}

	combinations := cartesianProduct(cfg.dimensions)
	if len(combinations) == 0 {
		return nil, nil
	}

	valves := make([]Valve, 0, len(combinations))
	seen := make(map[string]struct{}, len(combinations))
	for _, combo := range combinations {
		name := formatValveName(baseName, combo)
		if nameTmpl != nil {
			if name, err = executeTemplate(nameTmpl, combo); err != nil {
				return nil, fmt.Errorf("name template failed: %w", err)
			}
		}

		id := slugify(name)
		if idTmpl != nil {
			if id, err = executeTemplate(idTmpl, combo); err != nil {
				return nil, fmt.Errorf("id template failed: %w", err)
			}
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate valve id %q in bank %q", id, baseName)
		}
		seen[id] = struct{}{}

		labels := mergeMaps(cfg.staticLabels, combo)
		valveOpts := []ValveOption{WithLabels(flattenMap(labels)...)}
		if locationTmpl != nil {
			location, err := executeTemplate(locationTmpl, combo)
			if err != nil {
				return nil, fmt.Errorf("location template failed: %w", err)
			}
			valveOpts = append(valveOpts, WithLocation(location))
		}
		valveOpts = append(valveOpts, cfg.valveOptions...)

		v, err := NewValve(id, name, valveOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create valve '%s': %w", name, err)
		}
		valves = append(valves, v)
	}

	return valves, nil
}

// parseBankTemplate parses an optional template. Empty text returns nil.
func parseBankTemplate(kind, text string) (*template.Template, error) {
	if text == "" {
		return nil, nil
	}
	tmpl, err := template.New(kind).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid %s template: %w", kind, err)
	}
	return tmpl, nil
}

// cartesianProduct generates all combinations of dimension values.
// Dimension keys are processed in sorted order for deterministic output.
func cartesianProduct(dims map[string][]string) []map[string]string {
	if len(dims) == 0 {
		return nil
	}

	keys := sortedKeys(dims)

	for _, k := range keys {
		if len(dims[k]) == 0 {
			return nil
		}
	}

	total := 1
	for _, k := range keys {
		total *= len(dims[k])
	}

	result := make([]map[string]string, 0, total)

	// odometer-style iteration, rightmost key varies fastest
	indices := make([]int, len(keys))
	for {
		combo := make(map[string]string, len(keys))
		for i, k := range keys {
			combo[k] = dims[k][indices[i]]
		}
		result = append(result, combo)

		for i := len(keys) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(dims[keys[i]]) {
				break
			}
			indices[i] = 0
			if i == 0 {
				return result
			}
		}
	}
}

func executeTemplate(tmpl *template.Template, data map[string]string) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// formatValveName creates a display name such as "Zone (1/A)".
func formatValveName(baseName string, combo map[string]string) string {
	keys := sortedKeys(combo)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = combo[k]
	}
	return fmt.Sprintf("%s (%s)", baseName, strings.Join(parts, "/"))
}

// slugify lower-cases s and replaces runs of non-alphanumerics with "-".
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func mergeMaps(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

func flattenMap(m map[string]string) []string {
	keys := sortedKeys(m)
	result := make([]string, 0, len(m)*2)
	for _, k := range keys {
		result = append(result, k, m[k])
	}
	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
