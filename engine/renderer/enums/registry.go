package enums

import (
	"fmt"
	"sort"
)

// Registry resolves descriptor tokens to enum values.
// A Registry is built once with NewRegistry and is read-only afterwards, so a single instance can be shared
// by any number of compilers and goroutines.
type Registry struct {
	tables map[Family]map[string]uint32
	names  map[Family]map[uint32]string
}

// NewRegistry builds a Registry holding every token family.
// The registry owns private copies of the tables.
//
// Returns:
//   - *Registry: the populated, immutable registry
func NewRegistry() *Registry {
	r := &Registry{
		tables: make(map[Family]map[string]uint32, len(familyTokens)),
		names:  make(map[Family]map[uint32]string, len(familyTokens)),
	}
	for f, tokens := range familyTokens {
		table := make(map[string]uint32, len(tokens))
		for k, v := range tokens {
			table[k] = v
		}
		r.tables[f] = table
		r.names[f] = invert(table)
	}
	return r
}

// Resolve looks up a token within a family. Matching is exact and case-sensitive.
//
// Parameters:
//   - f: the family to search
//   - token: the lowercase token string
//
// Returns:
//   - uint32: the raw enum value
//   - bool: false if the family or token is unknown
func (r *Registry) Resolve(f Family, token string) (uint32, bool) {
	table, ok := r.tables[f]
	if !ok {
		return 0, false
	}
	v, ok := table[token]
	return v, ok
}

// Name returns the token registered for a value in a family.
//
// Parameters:
//   - f: the family to search
//   - v: the raw enum value
//
// Returns:
//   - string: the token
//   - bool: false if no token maps to v
func (r *Registry) Name(f Family, v uint32) (string, bool) {
	name, ok := r.names[f][v]
	return name, ok
}

// ResolveBindFlags ORs a list of bind-flag tokens into one mask.
// An empty list yields 0.
//
// Parameters:
//   - tokens: bind-flag tokens such as "vertex_buffer" or "shader_resource"
//
// Returns:
//   - BindFlag: the combined mask
//   - error: an error naming the first unrecognized token
func (r *Registry) ResolveBindFlags(tokens []string) (BindFlag, error) {
	var mask BindFlag
	for i, t := range tokens {
		v, ok := r.Resolve(FamilyBindFlag, t)
		if !ok {
			return 0, fmt.Errorf("bind flag %d: unrecognized token %q", i, t)
		}
		mask |= BindFlag(v)
	}
	return mask, nil
}

// Tokens lists every token of a family in sorted order.
//
// Parameters:
//   - f: the family to list
//
// Returns:
//   - []string: the sorted tokens, or nil for an unknown family
func (r *Registry) Tokens(f Family) []string {
	table, ok := r.tables[f]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Families lists the registered families in sorted order.
func (r *Registry) Families() []Family {
	out := make([]Family, 0, len(r.tables))
	for f := range r.tables {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ResourceType resolves a resource_type token.
func (r *Registry) ResourceType(token string) (ResourceType, bool) {
	v, ok := r.Resolve(FamilyResourceType, token)
	return ResourceType(v), ok
}

// Access resolves an access token.
func (r *Registry) Access(token string) (AccessType, bool) {
	v, ok := r.Resolve(FamilyAccess, token)
	return AccessType(v), ok
}

// PipelineStage resolves a pipeline_stage token.
func (r *Registry) PipelineStage(token string) (PipelineStage, bool) {
	v, ok := r.Resolve(FamilyPipelineStage, token)
	return PipelineStage(v), ok
}

// Format resolves a DXGI format token.
func (r *Registry) Format(token string) (Format, bool) {
	v, ok := r.Resolve(FamilyFormat, token)
	return Format(v), ok
}

// ComparisonFunc resolves a comparison_func token.
func (r *Registry) ComparisonFunc(token string) (ComparisonFunc, bool) {
	v, ok := r.Resolve(FamilyComparisonFunc, token)
	return ComparisonFunc(v), ok
}

// StencilOp resolves a stencil_op token.
func (r *Registry) StencilOp(token string) (StencilOp, bool) {
	v, ok := r.Resolve(FamilyStencilOp, token)
	return StencilOp(v), ok
}

// Blend resolves a blend factor token.
func (r *Registry) Blend(token string) (Blend, bool) {
	v, ok := r.Resolve(FamilyBlend, token)
	return Blend(v), ok
}

// BlendOp resolves a blend_op token.
func (r *Registry) BlendOp(token string) (BlendOp, bool) {
	v, ok := r.Resolve(FamilyBlendOp, token)
	return BlendOp(v), ok
}

// FillMode resolves a fill_mode token.
func (r *Registry) FillMode(token string) (FillMode, bool) {
	v, ok := r.Resolve(FamilyFillMode, token)
	return FillMode(v), ok
}

// CullMode resolves a cull_mode token.
func (r *Registry) CullMode(token string) (CullMode, bool) {
	v, ok := r.Resolve(FamilyCullMode, token)
	return CullMode(v), ok
}

// Filter resolves a sampler filter token.
func (r *Registry) Filter(token string) (Filter, bool) {
	v, ok := r.Resolve(FamilyFilter, token)
	return Filter(v), ok
}

// AddressMode resolves a texture address_mode token.
func (r *Registry) AddressMode(token string) (TextureAddressMode, bool) {
	v, ok := r.Resolve(FamilyAddressMode, token)
	return TextureAddressMode(v), ok
}

// Topology resolves a primitive topology token.
func (r *Registry) Topology(token string) (PrimitiveTopology, bool) {
	v, ok := r.Resolve(FamilyTopology, token)
	return PrimitiveTopology(v), ok
}
