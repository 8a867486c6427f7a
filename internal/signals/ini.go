package signals

import (
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"modmatch/internal/catalog"
	"modmatch/internal/config"
	"modmatch/internal/textutil"
)

// IniConfig controls which parts of an INI file become signals.
type IniConfig struct {
	// SectionPrefixes are stripped from section names before tokenizing,
	// so [TextureOverrideHuTaoBody] yields "HuTaoBody".
	SectionPrefixes []string
	// KeyWhitelist patterns select keys whose values are tokenized as text.
	KeyWhitelist []string
	// KeyBlacklist patterns select keys that are ignored entirely.
	KeyBlacklist []string
	// IgnoredTokens are dropped from every token list.
	IgnoredTokens []string
}

// NewIniConfig converts the [ini] configuration section.
func NewIniConfig(cfg config.Ini) IniConfig {
	return IniConfig{
		SectionPrefixes: append([]string(nil), cfg.SectionPrefixes...),
		KeyWhitelist:    append([]string(nil), cfg.KeyWhitelist...),
		KeyBlacklist:    append([]string(nil), cfg.KeyBlacklist...),
		IgnoredTokens:   append([]string(nil), cfg.IgnoredTokens...),
	}
}

// DefaultIniConfig returns the built-in INI rules.
func DefaultIniConfig() IniConfig {
	return NewIniConfig(config.Default().Ini)
}

type iniRules struct {
	prefixes  []string
	whitelist []string
	blacklist []string
	ignored   map[string]struct{}
}

func compileRules(cfg IniConfig) iniRules {
	rules := iniRules{ignored: make(map[string]struct{}, len(cfg.IgnoredTokens))}
	for _, prefix := range cfg.SectionPrefixes {
		if p := strings.ToLower(strings.TrimSpace(prefix)); p != "" {
			rules.prefixes = append(rules.prefixes, p)
		}
	}
	// Longest first so "ShaderRegex" wins over "Shader".
	sort.SliceStable(rules.prefixes, func(i, j int) bool {
		return len(rules.prefixes[i]) > len(rules.prefixes[j])
	})
	for _, pattern := range cfg.KeyWhitelist {
		if p := strings.ToLower(strings.TrimSpace(pattern)); p != "" {
			rules.whitelist = append(rules.whitelist, p)
		}
	}
	for _, pattern := range cfg.KeyBlacklist {
		if p := strings.ToLower(strings.TrimSpace(pattern)); p != "" {
			rules.blacklist = append(rules.blacklist, p)
		}
	}
	for _, token := range cfg.IgnoredTokens {
		rules.ignored[textutil.Fold(strings.TrimSpace(token))] = struct{}{}
	}
	return rules
}

func (r iniRules) keep(token string) bool {
	_, drop := r.ignored[token]
	return !drop
}

func matchesAny(patterns []string, key string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, key); err == nil && ok {
			return true
		}
	}
	return false
}

// iniEvidence accumulates what the INI files of one folder contribute.
type iniEvidence struct {
	tokens  []string
	strings []string
	hashes  []string
}

func (e *iniEvidence) addText(text string) {
	e.tokens = append(e.tokens, textutil.Tokenize(text)...)
}

func (e *iniEvidence) addString(text string) {
	if text = strings.TrimSpace(text); text != "" {
		e.strings = append(e.strings, text)
	}
}

// parseIni scans INI text line by line. Malformed lines are skipped.
func parseIni(text string, rules iniRules, ev *iniEvidence) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || line[0] == ';' || line[0] == '#' || strings.HasPrefix(line, "//") {
			continue
		}
		if line[0] == '[' {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				continue
			}
			section := rules.stripPrefix(strings.TrimSpace(line[1:end]))
			ev.addText(section)
			ev.addString(section)
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:eq]))
		value := unquote(strings.TrimSpace(line[eq+1:]))
		if key == "hash" {
			if h, ok := catalog.NormalizeHash(value); ok {
				ev.hashes = append(ev.hashes, h)
			}
			continue
		}
		if matchesAny(rules.blacklist, key) {
			continue
		}
		switch {
		case isPathLike(value):
			for _, segment := range pathSegments(value) {
				ev.addText(segment)
				ev.addString(segment)
			}
		case matchesAny(rules.whitelist, key):
			ev.addText(value)
			ev.addString(value)
		default:
			ev.addText(key)
		}
	}
}

func (r iniRules) stripPrefix(section string) string {
	lower := strings.ToLower(section)
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(lower, prefix) && len(section) > len(prefix) {
			return section[len(prefix):]
		}
	}
	return section
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// isPathLike reports whether value names a file or directory: it contains a
// separator or ends in a short alphanumeric extension.
func isPathLike(value string) bool {
	if value == "" || strings.ContainsAny(value, " \t") && !strings.ContainsAny(value, `/\`) {
		return false
	}
	if strings.ContainsAny(value, `/\`) {
		return true
	}
	ext := path.Ext(value)
	if len(ext) < 2 || len(ext) > 5 || len(ext) == len(value) {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	// Numbers such as 0.5 are not paths.
	head := value[:len(value)-len(ext)]
	return strings.IndexFunc(head, func(r rune) bool { return r < '0' || r > '9' }) >= 0
}

// pathSegments splits a path-like value into its segments with the file
// extension of the last segment removed. Relative markers are dropped.
func pathSegments(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == '/' || r == '\\' })
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." || part == ".." {
			continue
		}
		if i == len(parts)-1 {
			part = strings.TrimSuffix(part, path.Ext(part))
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
