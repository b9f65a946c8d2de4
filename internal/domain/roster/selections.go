package roster

import (
	"encoding/json"
	"sort"
)

// Selections maps zone id to weekday to the set of selected staff ids.
type Selections map[string]map[Weekday][]string

// Normalize returns a copy with sorted, de-duplicated staff ids and without
// empty days or zones.
func (s Selections) Normalize() Selections {
	out := make(Selections, len(s))
	for zoneID, days := range s {
		nd := make(map[Weekday][]string, len(days))
		for day, ids := range days {
			if len(ids) == 0 {
				continue
			}
			set := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				set[id] = struct{}{}
			}
			sorted := make([]string, 0, len(set))
			for id := range set {
				sorted = append(sorted, id)
			}
			sort.Strings(sorted)
			nd[day] = sorted
		}
		if len(nd) > 0 {
			out[zoneID] = nd
		}
	}
	return out
}

// Serialize returns the canonical JSON form. Map keys are emitted in sorted
// order and staff ids are sorted, so equal selections serialize identically.
func (s Selections) Serialize() ([]byte, error) {
	return json.Marshal(s.Normalize())
}

func DeserializeSelections(data []byte) (Selections, error) {
	var s Selections
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Normalize(), nil
}

// Equal compares the normalized forms.
func (s Selections) Equal(other Selections) bool {
	a, b := s.Normalize(), other.Normalize()
	if len(a) != len(b) {
		return false
	}
	for zoneID, days := range a {
		od, ok := b[zoneID]
		if !ok || len(od) != len(days) {
			return false
		}
		for day, ids := range days {
			oids, ok := od[day]
			if !ok || len(oids) != len(ids) {
				return false
			}
			for i := range ids {
				if ids[i] != oids[i] {
					return false
				}
			}
		}
	}
	return true
}

// LoadTemplate applies a template to the current selections. A global template
// replaces everything; a zone template replaces only its own zone.
func LoadTemplate(t Template, current Selections) Selections {
	if t.Scope == TemplateScopeGlobal || t.ZoneID == nil {
		return t.Selections.Normalize()
	}

	out := current.Normalize()
	delete(out, *t.ZoneID)
	if days, ok := t.Selections.Normalize()[*t.ZoneID]; ok {
		out[*t.ZoneID] = days
	}
	return out
}
