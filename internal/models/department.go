package models

import (
	"encoding/json"
	"fmt"
)

// Department is static reference data from portal_departman.
type Department struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// DepartmentRef is a department attached to an announcement.
type DepartmentRef struct {
	ID   int64  `json:"id"`
	Name string `json:"departman_adi"`
}

// DepartmentRefs scans the json_agg column produced by the announcement queries.
type DepartmentRefs []DepartmentRef

// Scan implements sql.Scanner.
func (d *DepartmentRefs) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = DepartmentRefs{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan departments: unsupported type %T", src)
	}
	refs := DepartmentRefs{}
	if err := json.Unmarshal(raw, &refs); err != nil {
		return fmt.Errorf("scan departments: %w", err)
	}
	*d = refs
	return nil
}

// IDs returns the department identifiers.
func (d DepartmentRefs) IDs() []int64 {
	ids := make([]int64, 0, len(d))
	for _, ref := range d {
		ids = append(ids, ref.ID)
	}
	return ids
}

// Names returns the department display names.
func (d DepartmentRefs) Names() []string {
	names := make([]string, 0, len(d))
	for _, ref := range d {
		names = append(names, ref.Name)
	}
	return names
}
