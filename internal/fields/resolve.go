package fields

import "sort"

type Origin string

const (
	OriginInherited Origin = "inherited"
	OriginOverride  Origin = "override"
	OriginPersonal  Origin = "personal"
)

// TemplateSource is one template-tier row handed to Merge.
type TemplateSource struct {
	ID         uint
	Definition Definition
}

// PersonalSource is one personal-tier row handed to Merge. A non-nil
// ParentFieldID marks it as an override of that template row.
type PersonalSource struct {
	ID            uint
	ParentFieldID *uint
	Definition    Definition
}

// EffectiveField is the merged view of one field for a (type, user) pair.
// It is computed on every read and never persisted.
type EffectiveField struct {
	Definition
	Origin        Origin `json:"origin"`
	SourceID      uint   `json:"source_id"`
	ParentFieldID *uint  `json:"parent_field_id,omitempty"`
}

// Merge combines the template tier with the personal tier:
//
//  1. personal rows are indexed by parent field id, with a name match as
//     fallback for rows that collide with a template field by name;
//  2. template rows are walked in stored order, each replaced by its matching
//     personal row (tagged override) or emitted as-is (tagged inherited);
//  3. unmatched personal rows without a parent follow, in their stored order,
//     tagged personal;
//  4. the whole sequence is stably sorted by Order, so equal orders keep
//     their emission position.
//
// Merge is pure: same inputs, same output, no hidden state.
func Merge(templates []TemplateSource, personals []PersonalSource) []EffectiveField {
	byParent := make(map[uint]int, len(personals))
	byName := make(map[string]int, len(personals))
	consumed := make([]bool, len(personals))

	for i, p := range personals {
		if p.ParentFieldID != nil {
			if _, dup := byParent[*p.ParentFieldID]; !dup {
				byParent[*p.ParentFieldID] = i
			}
			continue
		}
		if _, dup := byName[p.Definition.Name]; !dup {
			byName[p.Definition.Name] = i
		}
	}

	out := make([]EffectiveField, 0, len(templates)+len(personals))

	for _, t := range templates {
		idx, ok := byParent[t.ID]
		if !ok {
			idx, ok = byName[t.Definition.Name]
		}
		if ok && !consumed[idx] {
			p := personals[idx]
			consumed[idx] = true
			parentID := t.ID
			out = append(out, EffectiveField{
				Definition:    p.Definition,
				Origin:        OriginOverride,
				SourceID:      p.ID,
				ParentFieldID: &parentID,
			})
			continue
		}
		out = append(out, EffectiveField{
			Definition: t.Definition,
			Origin:     OriginInherited,
			SourceID:   t.ID,
		})
	}

	for i, p := range personals {
		if consumed[i] || p.ParentFieldID != nil {
			continue
		}
		out = append(out, EffectiveField{
			Definition: p.Definition,
			Origin:     OriginPersonal,
			SourceID:   p.ID,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
