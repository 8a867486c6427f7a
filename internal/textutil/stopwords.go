package textutil

// stopwords are folded tokens that carry no identifying information in mod
// folder names or catalog entries.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "for": {}, "by": {},
	"to": {}, "in": {}, "on": {}, "with": {}, "or": {},
	"mod": {}, "mods": {}, "ver": {}, "version": {}, "fix": {}, "fixed": {},
	"new": {}, "final": {}, "copy": {}, "disabled": {}, "backup": {},
	"merged": {}, "update": {}, "updated": {}, "hotfix": {}, "patch": {},
	"release": {}, "beta": {}, "alpha": {}, "wip": {},
	"ini": {}, "dds": {}, "buf": {}, "ib": {}, "vb": {}, "txt": {},
	"png": {}, "jpg": {}, "jpeg": {}, "zip": {}, "rar": {}, "7z": {},
	"readme": {}, "credits": {}, "preview": {},
}

// IsStopword reports whether the folded token is ignored by Tokenize.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
