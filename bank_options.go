package valvedash

import (
	"errors"
	"fmt"
)

// bankConfig holds mutable state during valve bank construction.
type bankConfig struct {
	dimensions       map[string][]string
	nameTemplate     string
	idTemplate       string
	locationTemplate string
	staticLabels     map[string]string
	valveOptions     []ValveOption
}

// BankOption configures a valve bank created with [NewValveBank].
type BankOption func(*bankConfig) error

// WithDimensions sets the dimension values whose cartesian product defines
// the bank. Required.
//
// Returns an error if dims is empty or any dimension has no values or an
// empty value.
func WithDimensions(dims map[string][]string) BankOption {
	return func(cfg *bankConfig) error {
		if len(dims) == 0 {
			return errors.New("at least one dimension required")
		}
		for k, vals := range dims {
			if len(vals) == 0 {
				return fmt.Errorf("dimension '%s' has no values", k)
			}
			for i, v := range vals {
				if v == "" {
					return fmt.Errorf("dimension '%s' contains empty value at index %d", k, i)
				}
			}
		}
		cfg.dimensions = dims
		return nil
	}
}

// WithNameTemplate sets a Go template for valve names, e.g.
// "Irrigation Zone {{.zone}}{{.sector}}".
func WithNameTemplate(tmpl string) BankOption {
	return func(cfg *bankConfig) error {
		cfg.nameTemplate = tmpl
		return nil
	}
}

// WithIDTemplate sets a Go template for valve IDs, e.g. "{{.zone}}{{.sector}}".
func WithIDTemplate(tmpl string) BankOption {
	return func(cfg *bankConfig) error {
		cfg.idTemplate = tmpl
		return nil
	}
}

// WithLocationTemplate sets a Go template for valve locations.
func WithLocationTemplate(tmpl string) BankOption {
	return func(cfg *bankConfig) error {
		cfg.locationTemplate = tmpl
		return nil
	}
}

// WithBankLabels adds static labels to every valve in the bank. Dimension
// labels take precedence on key collisions.
//
// Returns an error if an odd number of arguments is provided.
func WithBankLabels(keyValues ...string) BankOption {
	return func(cfg *bankConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithBankLabels requires an even number of arguments (key-value pairs)")
		}
		if cfg.staticLabels == nil {
			cfg.staticLabels = make(map[string]string)
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.staticLabels[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithValveOptions applies opts to every valve in the bank.
func WithValveOptions(opts ...ValveOption) BankOption {
	return func(cfg *bankConfig) error {
		cfg.valveOptions = append(cfg.valveOptions, opts...)
		return nil
	}
}
