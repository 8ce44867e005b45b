package extract

import "fmt"

// Entity is a schema.org entity submitted for validation.
type Entity struct {
	Type       string `json:"type"`
	Properties any    `json:"properties"`
}

// typesRequiringName lists the schema.org types whose name property is mandatory.
var typesRequiringName = map[string]bool{
	"Organization": true,
	"Person":       true,
}

// ValidateEntity returns the problems found with e, or nil when it is valid.
func ValidateEntity(e Entity) []string {
	var errs []string

	props, isObject := e.Properties.(map[string]any)
	if e.Type == "" || !isObject {
		errs = append(errs, "Missing type or properties")
	}

	if typesRequiringName[e.Type] && !truthy(props["name"]) {
		errs = append(errs, fmt.Sprintf("%s.name is required", e.Type))
	}

	return errs
}

// truthy treats missing, null, false, zero and empty string as absent.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	default:
		return true
	}
}
