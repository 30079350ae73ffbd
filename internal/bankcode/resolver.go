// =============================================================================
// Payroll to pain.001 Converter - Bank Code Resolver
// =============================================================================
//
// This module maps the first three characters of a RIB (account number) to
// the BIC of the issuing bank. The mapping is configuration data, loaded from
// a YAML file so that operations can add or correct prefixes without a new
// build:
//
//   bank_codes:
//     "013": BMCIMAMC
//     "230": CIHMMAMC
//
// A copy of the reference table is embedded in the binary and used when no
// bank_codes_file is configured.
//
// =============================================================================

package bankcode

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

// PrefixLength is the number of leading account characters used as the key.
const PrefixLength = 3

//go:embed bank_codes.yaml
var defaultTableData []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Table is an immutable prefix -> BIC lookup. It is safe for concurrent use.
type Table struct {
	codes map[string]string
}

// tableFile is the on-disk layout of a bank code file.
type tableFile struct {
	BankCodes map[string]string `yaml:"bank_codes"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a bank code table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bank code file: %w", err)
	}

	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return table, nil
}

// Parse builds a table from YAML bytes. Every key must be exactly
// PrefixLength characters and every code must be non-empty.
func Parse(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse bank codes: %w", err)
	}

	if len(file.BankCodes) == 0 {
		return nil, fmt.Errorf("bank code table is empty")
	}

	codes := make(map[string]string, len(file.BankCodes))
	for prefix, code := range file.BankCodes {
		if len([]rune(prefix)) != PrefixLength {
			return nil, fmt.Errorf("prefix %q must be %d characters", prefix, PrefixLength)
		}
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, fmt.Errorf("prefix %q has an empty bank code", prefix)
		}
		codes[prefix] = code
	}

	return &Table{codes: codes}, nil
}

// Default returns the embedded reference table.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(defaultTableData)
	})
	return defaultTable, defaultErr
}

// LoadOrDefault loads path when it is set and falls back to the embedded
// table otherwise.
func LoadOrDefault(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// =============================================================================
// LOOKUP
// =============================================================================

// Resolve returns the BIC for an account number. Whitespace anywhere in the
// account is ignored. The boolean is false when the account is shorter than
// PrefixLength or its prefix is not in the table.
func (t *Table) Resolve(account string) (string, bool) {
	compact := []rune(Compact(account))
	if len(compact) < PrefixLength {
		return "", false
	}

	code, ok := t.codes[string(compact[:PrefixLength])]
	return code, ok
}

// Len returns the number of prefixes in the table.
func (t *Table) Len() int {
	return len(t.codes)
}

// Prefixes returns the known prefixes in ascending order.
func (t *Table) Prefixes() []string {
	prefixes := make([]string, 0, len(t.codes))
	for prefix := range t.codes {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}

// Compact removes every whitespace character from s.
func Compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
