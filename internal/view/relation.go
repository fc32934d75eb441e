package view

import (
	"fmt"
	"slices"

	"baas-admin-go/internal/store"
)

const (
	defaultPrimaryKey = "id"
	defaultOwnerField = "user_id"
)

// RelationSpec describes how generic code treats one tracked relation.
type RelationSpec struct {
	Name             string              `yaml:"name" json:"name"`
	PrimaryKey       string              `yaml:"primary_key" json:"primary_key"`
	OwnerField       string              `yaml:"owner_field" json:"owner_field"`
	Denormalize      bool                `yaml:"denormalize" json:"denormalize"`
	OrderBy          string              `yaml:"order_by" json:"order_by,omitempty"`
	FallbackHeaders  []string            `yaml:"fallback_headers" json:"fallback_headers"`
	JSONFields       []string            `yaml:"json_fields" json:"json_fields,omitempty"`
	EnumFields       map[string][]string `yaml:"enum_fields" json:"enum_fields,omitempty"`
	ForeignKeyFields []string            `yaml:"foreign_key_fields" json:"foreign_key_fields,omitempty"`
	RequiredFields   []string            `yaml:"required_fields" json:"required_fields,omitempty"`
}

func (s RelationSpec) withDefaults() RelationSpec {
	if s.PrimaryKey == "" {
		s.PrimaryKey = defaultPrimaryKey
	}
	if s.OwnerField == "" {
		s.OwnerField = defaultOwnerField
	}
	if s.OrderBy == "" {
		s.OrderBy = s.PrimaryKey
	}
	return s
}

func (s RelationSpec) IsJSONField(field string) bool {
	return slices.Contains(s.JSONFields, field)
}

func (s RelationSpec) IsForeignKey(field string) bool {
	return slices.Contains(s.ForeignKeyFields, field)
}

// AllowedValues returns the enumeration for a field, if it has one.
func (s RelationSpec) AllowedValues(field string) ([]string, bool) {
	values, ok := s.EnumFields[field]
	return values, ok && len(values) > 0
}

// ListOptions returns the gateway ordering used when fetching raw rows.
func (s RelationSpec) ListOptions(limit int) store.ListOptions {
	return store.ListOptions{
		OrderBy:    s.OrderBy,
		Descending: !s.Denormalize,
		Limit:      limit,
	}
}

// Registry resolves relation names to their specs.
type Registry struct {
	specs map[string]RelationSpec
	order []string
}

func NewRegistry(specs []RelationSpec) (*Registry, error) {
	r := &Registry{specs: make(map[string]RelationSpec, len(specs))}
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("relation at index %d missing name", i)
		}
		if _, dup := r.specs[spec.Name]; dup {
			return nil, fmt.Errorf("relation %s declared twice", spec.Name)
		}
		r.specs[spec.Name] = spec.withDefaults()
		r.order = append(r.order, spec.Name)
	}
	return r, nil
}

// Lookup returns the spec of a tracked relation or a not-found error.
func (r *Registry) Lookup(name string) (RelationSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return RelationSpec{}, &store.Error{
			Kind:    store.KindNotFound,
			Op:      "lookup relation",
			Message: fmt.Sprintf("relation %q is not tracked", name),
			Err:     store.ErrRelationNotFound,
		}
	}
	return spec, nil
}

// Names returns the tracked relation names in declaration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

func (r *Registry) Specs() []RelationSpec {
	out := make([]RelationSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}
