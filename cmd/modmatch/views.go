package main

import (
	"fmt"
	"path/filepath"

	"modmatch/internal/batch"
	"modmatch/internal/matcher"
	"modmatch/internal/signals"
)

type candidateView struct {
	Rank       int                    `json:"rank" yaml:"rank"`
	EntryID    int                    `json:"entry_id" yaml:"entry_id"`
	Name       string                 `json:"name" yaml:"name"`
	ObjectType string                 `json:"object_type,omitempty" yaml:"object_type,omitempty"`
	Score      float64                `json:"score" yaml:"score"`
	Confidence string                 `json:"confidence" yaml:"confidence"`
	Primary    bool                   `json:"primary" yaml:"primary"`
	Reasons    []matcher.ReasonRecord `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

type matchView struct {
	Folder     string                 `json:"folder" yaml:"folder"`
	Status     string                 `json:"status,omitempty" yaml:"status,omitempty"`
	Stage      string                 `json:"stage,omitempty" yaml:"stage,omitempty"`
	Label      string                 `json:"label,omitempty" yaml:"label,omitempty"`
	Confidence string                 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Detail     string                 `json:"detail,omitempty" yaml:"detail,omitempty"`
	Mode       string                 `json:"mode,omitempty" yaml:"mode,omitempty"`
	Fallback   bool                   `json:"fallback" yaml:"fallback"`
	Candidates []candidateView        `json:"candidates" yaml:"candidates"`
	Trace      []matcher.StageTrace   `json:"trace,omitempty" yaml:"trace,omitempty"`
	Signals    *signals.FolderSignals `json:"signals,omitempty" yaml:"signals,omitempty"`
	Outcome    string                 `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Error      string                 `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMS int64                  `json:"duration_ms" yaml:"duration_ms"`
}

func newMatchView(fr batch.FolderResult, explain bool) matchView {
	view := matchView{
		Folder:     fr.Folder,
		Mode:       string(fr.Mode),
		Fallback:   fr.Fallback,
		Outcome:    string(fr.Outcome),
		Error:      fr.Error,
		DurationMS: fr.Duration.Milliseconds(),
		Candidates: []candidateView{},
	}
	if fr.Result == nil {
		return view
	}
	res := fr.Result
	view.Status = string(res.Status)
	view.Stage = res.Stage
	view.Label = fr.Summary.Label
	view.Confidence = fr.Summary.Confidence
	view.Detail = fr.Summary.Detail
	for i, c := range res.TopK {
		cv := candidateView{
			Rank:       i + 1,
			EntryID:    int(c.EntryID),
			Name:       c.Name,
			ObjectType: c.ObjectType,
			Score:      c.Score,
			Confidence: c.Confidence.String(),
			Primary:    c.Primary,
		}
		if explain {
			cv.Reasons = matcher.Explain(c.Reasons)
		}
		view.Candidates = append(view.Candidates, cv)
	}
	if explain {
		view.Trace = res.Trace
		sig := res.Signals
		view.Signals = &sig
	}
	return view
}

func candidateRows(view matchView) [][]string {
	rows := make([][]string, 0, len(view.Candidates))
	for _, c := range view.Candidates {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Rank),
			c.Name,
			c.ObjectType,
			fmt.Sprintf("%.2f", c.Score),
			c.Confidence,
		})
	}
	return rows
}

func folderLabel(path string) string {
	return filepath.Base(path)
}
