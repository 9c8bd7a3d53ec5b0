package domain

// PairScore is the classifier output for one pair on one text item.
type PairScore struct {
	Pair string  `json:"pair"`
	P1   float64 `json:"p1"`
	P2   float64 `json:"p2"`
}

// ItemClassification holds the scores of one text item against every pair.
type ItemClassification struct {
	Text   string      `json:"text"`
	Scores []PairScore `json:"scores"`
}

// PairSummary accumulates probabilities for one pair across items.
type PairSummary struct {
	SumP1 float64
	SumP2 float64
	Count int
}

// Add folds one classification into the summary.
func (s *PairSummary) Add(p1, p2 float64) {
	s.SumP1 += p1
	s.SumP2 += p2
	s.Count++
}

// Average derives the running averages. An empty summary averages to zero.
func (s PairSummary) Average() AverageSummary {
	if s.Count == 0 {
		return AverageSummary{}
	}
	n := float64(s.Count)
	return AverageSummary{
		AvgP1: s.SumP1 / n,
		AvgP2: s.SumP2 / n,
		Count: s.Count,
	}
}

// AverageSummary is the per-pair result reported to callers.
type AverageSummary struct {
	AvgP1 float64 `json:"avg_p1"`
	AvgP2 float64 `json:"avg_p2"`
	Count int     `json:"count"`
}

// TaskResult is the outcome of a successful classification task.
type TaskResult struct {
	Items   []ItemClassification      `json:"items"`
	Summary map[string]AverageSummary `json:"summary"`
}

// Clone returns a deep copy of the result so callers can't mutate shared state.
func (r *TaskResult) Clone() *TaskResult {
	if r == nil {
		return nil
	}
	items := make([]ItemClassification, len(r.Items))
	for i, item := range r.Items {
		scores := make([]PairScore, len(item.Scores))
		copy(scores, item.Scores)
		items[i] = ItemClassification{Text: item.Text, Scores: scores}
	}
	summary := make(map[string]AverageSummary, len(r.Summary))
	for k, v := range r.Summary {
		summary[k] = v
	}
	return &TaskResult{Items: items, Summary: summary}
}
