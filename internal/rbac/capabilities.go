package rbac

import (
	"encoding/json"
	"strings"
)

// NamedRole is the object form of a role claim entry, e.g. {"name": "admin"}.
type NamedRole struct {
	Name string `json:"name"`
}

// NormalizeRoles collapses the accepted shapes of a roles claim into
// Capabilities. Supported shapes: a bare string, a list of strings, a list of
// {name} objects, their JSON-decoded []any / map[string]any forms, and raw JSON.
// Unknown shapes yield no roles.
func NormalizeRoles(claim any) Capabilities {
	names := collectRoleNames(claim)
	roles := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	caps := Capabilities{}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		roles = append(roles, name)
		if name == RoleAdmin {
			caps.IsAdmin = true
		}
	}
	caps.Roles = roles
	return caps
}

func collectRoleNames(claim any) []string {
	switch v := claim.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case NamedRole:
		return []string{v.Name}
	case []NamedRole:
		out := make([]string, 0, len(v))
		for _, r := range v {
			out = append(out, r.Name)
		}
		return out
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return []string{name}
		}
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, collectRoleNames(item)...)
		}
		return out
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil
		}
		return collectRoleNames(decoded)
	default:
		return nil
	}
}
