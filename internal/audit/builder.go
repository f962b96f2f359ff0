package audit

import (
	"github.com/a11yscan/contrastscan/internal/collector"
	"github.com/a11yscan/contrastscan/internal/model"
	"github.com/a11yscan/contrastscan/internal/wcag"
)

// BuildIssues classifies each candidate as pass/fail against its AA
// threshold and aggregates candidates sharing a color-pair signature
// into single records.
//
// Within each collection the first occurrence of a signature creates
// the record and fixes all scalar fields; later candidates with the
// same signature only append their node identifier, in encounter
// order. A hypothetical later candidate whose raw ratio differs in the
// last float bits does not re-average the stored ratio: first seen
// wins.
func BuildIssues(candidates []collector.Candidate) (issues, passed []*model.ContrastIssue) {
	issues = []*model.ContrastIssue{}
	passed = []*model.ContrastIssue{}
	issueIndex := make(map[string]*model.ContrastIssue)
	passedIndex := make(map[string]*model.ContrastIssue)

	for _, cand := range candidates {
		fgHex := cand.Foreground.Hex()
		bgHex := cand.Background.Hex()
		cat := cand.Category
		key := model.GroupKey(fgHex, bgHex, cat.IsText(), cat.IsLargeText())

		// Route by AA result; the two collections group independently.
		ratio := wcag.Contrast(cand.Foreground, cand.Background)
		passAA := ratio >= cat.RequiredAA

		index := issueIndex
		bucket := &issues
		if passAA {
			index = passedIndex
			bucket = &passed
		}

		if existing, ok := index[key]; ok {
			existing.NodeIDs = append(existing.NodeIDs, cand.Node.ID)
			continue
		}

		record := &model.ContrastIssue{
			ForegroundHex: fgHex,
			BackgroundHex: bgHex,
			Ratio:         ratio,
			RequiredAA:    cat.RequiredAA,
			RequiredAAA:   cat.RequiredAAA,
			PassAA:        passAA,
			ElementType:   cat.Kind.String(),
			IsText:        cat.IsText(),
			IsLargeText:   cat.IsLargeText(),
			NodeIDs:       []string{cand.Node.ID},
		}
		if cat.RequiredAAA != nil {
			passAAA := ratio >= *cat.RequiredAAA
			record.PassAAA = &passAAA
		}

		index[key] = record
		*bucket = append(*bucket, record)
	}
	return issues, passed
}
