package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"salesdesk/internal/commission"
)

// LoadColumns reads header candidate lists from a YAML file. Concepts the file
// leaves out keep their defaults; an empty path yields the defaults.
//
//	seller_name: [consultora, vendedora]
//	amount: [valor pago, amount]
func LoadColumns(path string) (commission.Columns, error) {
	defaults := commission.DefaultColumns()
	if path == "" {
		return defaults, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("read column aliases: %w", err)
	}
	var cols commission.Columns
	if err := yaml.Unmarshal(raw, &cols); err != nil {
		return defaults, fmt.Errorf("parse column aliases %s: %w", path, err)
	}
	return cols.Merge(defaults), nil
}
