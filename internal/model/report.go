package model

import "time"

// AuditReport is the result of one contrast scan over a document
// snapshot. It is discarded and replaced on the next scan.
//
// Design decision: issues and passes are kept as separate lists (plus
// a combined accessor) because the presentation layer treats them
// differently (failing groups are actionable, passing groups are
// informational) while the wire contract wants both plus the union.
type AuditReport struct {
	// DocumentPath is the scanned document file, if any.
	DocumentPath string `json:"document_path,omitempty"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Issues are the groups failing their AA threshold.
	Issues []*ContrastIssue `json:"issues"`

	// Passed are the groups meeting their AA threshold.
	Passed []*ContrastIssue `json:"passed"`

	// Truncated reports that a traversal limit was reached and the
	// result set is incomplete. Truncation is not an error: collected
	// results are kept, and the operator is told results may be
	// partial.
	Truncated bool `json:"truncated"`

	// VisitedNodes is the number of nodes touched during traversal.
	VisitedNodes int `json:"visited_nodes"`

	// CandidateCount is the number of elements that yielded a
	// contrast tuple before grouping.
	CandidateCount int `json:"candidate_count"`

	// Error contains any scan failure. Only set when the document
	// could not be processed at all.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewAuditReport creates an empty report for the given document.
func NewAuditReport(documentPath string) *AuditReport {
	return &AuditReport{
		DocumentPath: documentPath,
		DateScanned:  time.Now(),
		Issues:       []*ContrastIssue{},
		Passed:       []*ContrastIssue{},
	}
}

// All returns failing then passing groups as one list, matching the
// scan-result wire payload.
func (r *AuditReport) All() []*ContrastIssue {
	all := make([]*ContrastIssue, 0, len(r.Issues)+len(r.Passed))
	all = append(all, r.Issues...)
	all = append(all, r.Passed...)
	return all
}

// FailingElementCount returns the number of individual elements inside
// failing groups.
func (r *AuditReport) FailingElementCount() int {
	total := 0
	for _, issue := range r.Issues {
		total += len(issue.NodeIDs)
	}
	return total
}

// Summary is the condensed, human-oriented view of an AuditReport,
// mirroring the report/summary split used for terminal output.
type Summary struct {
	// DocumentPath is the scanned document file.
	DocumentPath string `json:"document_path,omitempty"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// FailingGroups is the number of color-pair groups failing AA.
	FailingGroups int `json:"failing_groups"`

	// PassingGroups is the number of groups meeting AA.
	PassingGroups int `json:"passing_groups"`

	// FailingElements is the number of elements inside failing groups.
	FailingElements int `json:"failing_elements"`

	// AAAShortfalls is the number of groups that pass AA but miss
	// their AAA tier (only text groups carry an AAA tier).
	AAAShortfalls int `json:"aaa_shortfalls"`

	// WorstRatio is the lowest contrast ratio among failing groups,
	// or 0 when nothing fails.
	WorstRatio float64 `json:"worst_ratio,omitempty"`

	// Truncated mirrors the report's truncation indicator.
	Truncated bool `json:"truncated"`

	// Error mirrors the report's error message.
	Error string `json:"error,omitempty"`
}

// NewSummary condenses an AuditReport.
func NewSummary(r *AuditReport) *Summary {
	s := &Summary{
		DocumentPath:    r.DocumentPath,
		DateScanned:     r.DateScanned,
		FailingGroups:   len(r.Issues),
		PassingGroups:   len(r.Passed),
		FailingElements: r.FailingElementCount(),
		Truncated:       r.Truncated,
		Error:           r.ErrorMessage,
	}
	for _, issue := range r.Issues {
		if s.WorstRatio == 0 || issue.Ratio < s.WorstRatio {
			s.WorstRatio = issue.Ratio
		}
	}
	for _, group := range r.Passed {
		if group.PassAAA != nil && !*group.PassAAA {
			s.AAAShortfalls++
		}
	}
	return s
}
