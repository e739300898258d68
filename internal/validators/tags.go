package validators

import (
	"reflect"
	"strings"
)

// jsonName reports fields by their JSON (or query) name so messages match the request.
func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "query"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
