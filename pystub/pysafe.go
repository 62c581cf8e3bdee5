package pystub

import "strings"

// reservedWords holds the Python keywords plus exec and print, which
// were keywords in Python 2 and still confuse tooling as attribute
// names.
var reservedWords = map[string]bool{
	"False": true, "None": true, "True": true,
	"and": true, "as": true, "assert": true, "async": true,
	"await": true, "break": true, "class": true, "continue": true,
	"def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true,
	"global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true,
	"or": true, "pass": true, "raise": true, "return": true,
	"try": true, "while": true, "with": true, "yield": true,
	"exec": true, "print": true,
}

// pysafe maps a Java identifier to a Python identifier that cannot
// collide with the Python grammar. Keywords get a "_" suffix. Names
// shaped like dunders ("__x__") are reserved for the Python runtime
// and have no safe equivalent, so ok is false and the caller drops
// the member.
func pysafe(name string) (string, bool) {
	if isDunder(name) {
		return "", false
	}
	if reservedWords[name] {
		return name + "_", true
	}
	return name, true
}

func isDunder(name string) bool {
	return len(name) >= 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// pysafePath mangles every dot-separated segment of a package path.
// Dunder-shaped segments cannot occur in Java package names, so the
// per-segment mangling never drops a segment.
func pysafePath(path string) string {
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		if mangled, ok := pysafe(segment); ok {
			segments[i] = mangled
		}
	}
	return strings.Join(segments, ".")
}
