package catalog

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// idPrefix matches a leading run of up to 6 digits in a filename stem.
var idPrefix = regexp.MustCompile(`^\d{1,6}`)

// ParseKey derives the numeric identifier and normalized display name from
// an object key. The identifier is the leading digit run of the
// extension-stripped basename, or nil when the stem has no numeric prefix.
// The name is the extension-stripped basename, trimmed and lower-cased, with
// the identifier digits retained.
//
//	"00083_kf_rgb.mp4"     -> 83, "00083_kf_rgb"
//	"folder/00157_abc.mp4" -> 157, "00157_abc"
//	"apple.mp4"            -> nil, "apple"
func ParseKey(key string) (*int64, string) {
	base := path.Base(key)
	stem := strings.TrimSuffix(base, path.Ext(base))
	name := strings.ToLower(strings.TrimSpace(stem))

	digits := idPrefix.FindString(stem)
	if digits == "" {
		return nil, name
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, name
	}
	return &id, name
}
