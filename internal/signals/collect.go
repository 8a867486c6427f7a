package signals

import (
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"modmatch/internal/textutil"
)

// Collect extracts signals from contents under the budget of mode. INI
// files are read through fsys, which must be rooted at the folder. A nil
// fsys skips INI reads. Unreadable files are counted as skipped.
func Collect(fsys fs.FS, contents FolderContents, mode Mode, cfg IniConfig) FolderSignals {
	if mode != ModeFull {
		mode = ModeQuick
	}
	budget := BudgetFor(mode)
	rules := compileRules(cfg)

	sig := FolderSignals{
		Mode:       mode,
		FolderName: strings.TrimSpace(contents.Name),
	}
	sig.NameTokens = filterTokens(textutil.Tokenize(sig.FolderName), rules)

	items := nameItems(contents, budget)
	sig.Counters.NameItems = len(items)
	sig.DeepStrings = items
	var deep []string
	for _, item := range items {
		deep = append(deep, textutil.Tokenize(item)...)
	}
	sig.DeepTokens = filterTokens(deep, rules)

	candidates := iniCandidates(contents.IniFiles, budget)
	sig.Counters.IniCandidates = len(candidates)
	selected := candidates
	if len(selected) > budget.MaxIniFiles {
		sig.Counters.IniSkipped += len(selected) - budget.MaxIniFiles
		selected = selected[:budget.MaxIniFiles]
	}

	var ev iniEvidence
	for i, rel := range selected {
		limit := budget.readLimit(sig.Counters.BytesScanned)
		if limit == 0 {
			sig.Counters.IniSkipped += len(selected) - i
			break
		}
		if fsys == nil {
			sig.Counters.IniSkipped++
			continue
		}
		text, n, err := readIni(fsys, rel, limit)
		if err != nil {
			sig.Counters.IniSkipped++
			continue
		}
		sig.Counters.FilesScanned++
		sig.Counters.BytesScanned += n
		parseIni(text, rules, &ev)
	}
	sig.IniTokens = filterTokens(ev.tokens, rules)
	sig.IniStrings = textutil.SortedUnique(ev.strings)
	sig.Hashes = textutil.SortedUnique(ev.hashes)

	sig.Fingerprint = computeFingerprint(sig)
	return sig
}

func filterTokens(tokens []string, rules iniRules) []string {
	kept := tokens[:0:0]
	for _, token := range tokens {
		if rules.keep(token) {
			kept = append(kept, token)
		}
	}
	return textutil.SortedUnique(kept)
}

// nameItems collects subfolder names and file stems within the depth budget,
// sorted and deduplicated, truncated to the item budget.
func nameItems(contents FolderContents, budget Budget) []string {
	var items []string
	for _, dir := range contents.Subfolders {
		dir = strings.ReplaceAll(dir, "\\", "/")
		if d := depth(dir); d == 0 || d > budget.MaxDepth {
			continue
		}
		if name := strings.TrimSpace(path.Base(dir)); name != "" {
			items = append(items, name)
		}
	}
	for _, file := range contents.Files {
		if d := depth(file.Path); d == 0 || d > budget.MaxDepth {
			continue
		}
		if stem := strings.TrimSpace(file.Stem); stem != "" {
			items = append(items, stem)
		}
	}
	items = textutil.SortedUnique(items)
	if len(items) > budget.MaxNameItems {
		items = items[:budget.MaxNameItems]
	}
	return items
}

// iniCandidates returns INI paths within the depth budget in lexicographic
// order.
func iniCandidates(files []string, budget Budget) []string {
	out := make([]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	for _, rel := range files {
		rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
		if d := depth(rel); d == 0 || d > budget.MaxDepth {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// readIni reads at most limit bytes (negative means unlimited). A file cut
// short loses its trailing partial line.
func readIni(fsys fs.FS, rel string, limit int64) (string, int64, error) {
	f, err := fsys.Open(rel)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		// One extra byte tells a file of exactly limit bytes from a longer one.
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	truncated := limit > 0 && int64(len(data)) > limit
	if truncated {
		data = data[:limit]
	}
	text := decodeText(data)
	if truncated {
		if cut := strings.LastIndexByte(text, '\n'); cut >= 0 {
			text = text[:cut]
		}
	}
	return text, int64(len(data)), nil
}
