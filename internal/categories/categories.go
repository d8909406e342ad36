// Package categories provides the suggested category names offered when
// entering transactions. Categories are free-form; the lists are hints only.
package categories

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cashmonitor/internal/core"
)

var defaultExpense = []string{
	"Einkauf",
	"Miete",
	"Strom/Gas/Wasser",
	"Internet/Telefon",
	"Versicherung",
	"Transport",
	"Freizeit",
	"Restaurant/Café",
	"Kleidung",
	"Gesundheit",
	"Bildung",
	"Abonnements",
	"Haushalt",
	"Geschenke",
	"Sonstiges",
}

var defaultIncome = []string{
	"Gehalt",
	"Freelance",
	"Nebenjob",
	"Zinsen",
	"Dividenden",
	"Verkauf",
	"Geschenk",
	"Erstattung",
	"Sonstiges",
}

// Set holds the suggestion lists per transaction kind.
type Set struct {
	Expense []string `yaml:"expense"`
	Income  []string `yaml:"income"`
}

func Defaults() Set {
	return Set{
		Expense: append([]string(nil), defaultExpense...),
		Income:  append([]string(nil), defaultIncome...),
	}
}

// For returns the suggestions for kind.
func (s Set) For(kind core.Kind) []string {
	if kind == core.Income {
		return s.Income
	}
	return s.Expense
}

// Load reads a YAML file with "expense" and "income" lists. A missing file
// or an empty list falls back to the defaults.
func Load(path string) (Set, error) {
	set := Defaults()
	if path == "" {
		return set, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return set, fmt.Errorf("read categories file: %w", err)
	}

	var file Set
	if err := yaml.Unmarshal(data, &file); err != nil {
		return set, fmt.Errorf("parse categories file %s: %w", path, err)
	}
	if list := dedupe(file.Expense); len(list) > 0 {
		set.Expense = list
	}
	if list := dedupe(file.Income); len(list) > 0 {
		set.Income = list
	}
	return set, nil
}

// WithUsed appends categories found in sheets that are not suggested yet, so
// names typed once are offered again.
func (s Set) WithUsed(sheets []*core.MonthSheet) Set {
	out := Set{Expense: append([]string(nil), s.Expense...), Income: append([]string(nil), s.Income...)}
	for _, sheet := range sheets {
		for _, tx := range sheet.Transactions {
			if tx.IsRollover {
				continue
			}
			if tx.Kind == core.Income {
				out.Income = appendMissing(out.Income, tx.Category)
			} else {
				out.Expense = appendMissing(out.Expense, tx.Category)
			}
		}
	}
	return out
}

func appendMissing(list []string, name string) []string {
	for _, v := range list {
		if v == name {
			return list
		}
	}
	return append(list, name)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
