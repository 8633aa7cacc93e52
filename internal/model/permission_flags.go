package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Capability is a boolean permission a child church can grant its parent
type Capability string

// Capabilities a child church can share with its parent
const (
	CapViewMembers      Capability = "view_members"
	CapViewServiceStats Capability = "view_service_stats"
	CapViewDiscipleship Capability = "view_discipleship"
	CapViewDepartments  Capability = "view_departments"
	CapViewTeaching     Capability = "view_teaching"
	CapViewEvents       Capability = "view_events"
)

// AllCapabilities returns the full capability enumeration
func AllCapabilities() []Capability {
	return []Capability{
		CapViewMembers,
		CapViewServiceStats,
		CapViewDiscipleship,
		CapViewDepartments,
		CapViewTeaching,
		CapViewEvents,
	}
}

// IsKnownCapability reports whether the capability is part of the enumeration
func IsKnownCapability(c Capability) bool {
	for _, known := range AllCapabilities() {
		if known == c {
			return true
		}
	}
	return false
}

// PermissionFlags is the set of capabilities a church shares with its parent.
// Stored as JSONB; any capability absent from the map is denied.
type PermissionFlags map[Capability]bool

// Granted reports whether a capability is granted. Nil maps and missing
// entries deny.
func (f PermissionFlags) Granted(c Capability) bool {
	if f == nil {
		return false
	}
	return f[c]
}

// Value implements driver.Valuer for JSONB storage
func (f PermissionFlags) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for JSONB storage
func (f *PermissionFlags) Scan(value interface{}) error {
	if value == nil {
		*f = PermissionFlags{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PermissionFlags", value)
	}

	if len(data) == 0 {
		*f = PermissionFlags{}
		return nil
	}

	return json.Unmarshal(data, f)
}
