package signals

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"

	"modmatch/internal/textutil"
)

// Counters record how much of a folder was actually read.
type Counters struct {
	FilesScanned  int   `json:"files_scanned" yaml:"files_scanned"`
	BytesScanned  int64 `json:"bytes_scanned" yaml:"bytes_scanned"`
	NameItems     int   `json:"name_items" yaml:"name_items"`
	IniCandidates int   `json:"ini_candidates" yaml:"ini_candidates"`
	IniSkipped    int   `json:"ini_skipped" yaml:"ini_skipped"`
}

// FolderSignals is the evidence extracted from one folder under one budget.
// Every list is sorted and deduplicated.
type FolderSignals struct {
	Mode        Mode     `json:"mode" yaml:"mode"`
	FolderName  string   `json:"folder_name" yaml:"folder_name"`
	NameTokens  []string `json:"name_tokens" yaml:"name_tokens"`
	DeepTokens  []string `json:"deep_tokens" yaml:"deep_tokens"`
	DeepStrings []string `json:"deep_strings" yaml:"deep_strings"`
	IniTokens   []string `json:"ini_tokens" yaml:"ini_tokens"`
	IniStrings  []string `json:"ini_strings" yaml:"ini_strings"`
	Hashes      []string `json:"hashes" yaml:"hashes"`
	Counters    Counters `json:"counters" yaml:"counters"`
	Fingerprint string   `json:"fingerprint" yaml:"fingerprint"`
}

// AllTokens returns the sorted union of name, deep and INI tokens.
func (s FolderSignals) AllTokens() []string {
	all := make([]string, 0, len(s.NameTokens)+len(s.DeepTokens)+len(s.IniTokens))
	all = append(all, s.NameTokens...)
	all = append(all, s.DeepTokens...)
	all = append(all, s.IniTokens...)
	return textutil.SortedUnique(all)
}

// Empty reports whether no evidence at all was collected.
func (s FolderSignals) Empty() bool {
	return len(s.NameTokens) == 0 && len(s.DeepTokens) == 0 && len(s.IniTokens) == 0 &&
		len(s.DeepStrings) == 0 && len(s.IniStrings) == 0 && len(s.Hashes) == 0
}

// computeFingerprint hashes every field in a fixed order. Lists are framed
// by their length so adjacent lists cannot alias each other.
func computeFingerprint(s FolderSignals) string {
	h := blake3.New()
	write := func(value string) {
		_, _ = h.Write([]byte(strconv.Itoa(len(value)) + ":" + value))
	}
	writeList := func(label string, values []string) {
		write(label)
		write(strconv.Itoa(len(values)))
		for _, v := range values {
			write(v)
		}
	}
	write(string(s.Mode))
	write(s.FolderName)
	writeList("name", s.NameTokens)
	writeList("deep", s.DeepTokens)
	writeList("deep_strings", s.DeepStrings)
	writeList("ini", s.IniTokens)
	writeList("ini_strings", s.IniStrings)
	writeList("hashes", s.Hashes)
	c := s.Counters
	writeList("counters", []string{
		strconv.Itoa(c.FilesScanned),
		strconv.FormatInt(c.BytesScanned, 10),
		strconv.Itoa(c.NameItems),
		strconv.Itoa(c.IniCandidates),
		strconv.Itoa(c.IniSkipped),
	})
	return hex.EncodeToString(h.Sum(nil))
}
