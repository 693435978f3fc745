package stack

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// NormalizeVersion reduces a manifest version requirement to the version it
// is anchored on: "^18.2.0" becomes "18.2.0" and ">=1.5, <2" becomes "1.5".
// Requirements that do not name a parseable version ("latest", "*",
// "workspace:*", git URLs) yield "".
func NormalizeVersion(spec string) string {
	spec = strings.TrimSpace(spec)
	if i := strings.Index(spec, "||"); i >= 0 {
		spec = spec[:i]
	}
	fields := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	for _, f := range fields {
		f = strings.TrimLeft(f, "^~><=!")
		if f == "" {
			continue
		}
		v, err := semver.NewVersion(f)
		if err != nil {
			return ""
		}
		return strings.TrimPrefix(v.Original(), "v")
	}
	return ""
}
