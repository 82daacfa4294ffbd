package serrors

import (
	"reflect"
	"strings"
)

// JSONTagName makes validator report fields by their json name.
func JSONTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
