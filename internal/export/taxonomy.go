// Package export renders ledger data for other tools: the taxonomy as YAML
// and movements as CSV.
package export

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/money-movement/internal/service"
)

// TaxonomyType is one type with its categories.
type TaxonomyType struct {
	Code       string             `yaml:"code,omitempty"`
	Name       string             `yaml:"name"`
	Custom     bool               `yaml:"custom,omitempty"`
	Categories []TaxonomyCategory `yaml:"categories,omitempty"`
}

// TaxonomyCategory is one category with its subcategory names.
type TaxonomyCategory struct {
	Name          string   `yaml:"name"`
	SubCategories []string `yaml:"subcategories,omitempty"`
}

// TaxonomyStatus is one status row.
type TaxonomyStatus struct {
	Code   string `yaml:"code,omitempty"`
	Name   string `yaml:"name"`
	Custom bool   `yaml:"custom,omitempty"`
}

// Taxonomy is the full classification tree.
type Taxonomy struct {
	Statuses []TaxonomyStatus `yaml:"statuses"`
	Types    []TaxonomyType   `yaml:"types"`
}

// LoadTaxonomy reads statuses, types, categories and subcategories from store.
func LoadTaxonomy(ctx context.Context, store service.Storage) (*Taxonomy, error) {
	statuses, err := store.GetStatuses(ctx)
	if err != nil {
		return nil, err
	}
	types, err := store.GetTypes(ctx)
	if err != nil {
		return nil, err
	}

	tax := &Taxonomy{}
	for _, st := range statuses {
		tax.Statuses = append(tax.Statuses, TaxonomyStatus{Code: string(st.Code), Name: st.Name, Custom: st.IsCustom})
	}

	for _, typ := range types {
		node := TaxonomyType{Code: string(typ.Code), Name: typ.Name, Custom: typ.IsCustom}

		categories, err := store.GetCategoriesByType(ctx, typ.ID)
		if err != nil {
			return nil, err
		}
		for _, cat := range categories {
			subs, err := store.GetSubCategories(ctx, cat.ID)
			if err != nil {
				return nil, err
			}
			catNode := TaxonomyCategory{Name: cat.Name}
			for _, sub := range subs {
				catNode.SubCategories = append(catNode.SubCategories, sub.Name)
			}
			node.Categories = append(node.Categories, catNode)
		}
		tax.Types = append(tax.Types, node)
	}
	return tax, nil
}

// WriteTaxonomyYAML encodes tax as YAML.
func WriteTaxonomyYAML(w io.Writer, tax *Taxonomy) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tax); err != nil {
		return fmt.Errorf("failed to encode taxonomy: %w", err)
	}
	return enc.Close()
}
