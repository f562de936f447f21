package liveboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff line types.
const (
	DiffContext = "context"
	DiffAdded   = "added"
	DiffRemoved = "removed"
)

// DiffLine is one line of a pinned dashboard comparison.
type DiffLine struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"oldLine,omitempty"`
	NewLine int    `json:"newLine,omitempty"`
}

// PinDiff compares two pinned dashboards line by line over their indented
// JSON form. Ids and timestamps of the pins themselves are left out.
type PinDiff struct {
	From  string     `json:"from"`
	To    string     `json:"to"`
	Lines []DiffLine `json:"lines"`
}

// Changed reports whether any line was added or removed.
func (d PinDiff) Changed() bool {
	for _, l := range d.Lines {
		if l.Type != DiffContext {
			return true
		}
	}
	return false
}

// DiffPins compares from against to.
func DiffPins(from, to PinnedDashboard) (PinDiff, error) {
	before, err := pinDocument(from)
	if err != nil {
		return PinDiff{}, err
	}
	after, err := pinDocument(to)
	if err != nil {
		return PinDiff{}, err
	}
	return PinDiff{From: from.ID, To: to.ID, Lines: diffLines(before, after)}, nil
}

func pinDocument(p PinnedDashboard) (string, error) {
	doc := struct {
		Name       string   `json:"name"`
		ReportName string   `json:"reportName,omitempty"`
		Widgets    []Widget `json:"widgets"`
	}{Name: p.Name, ReportName: p.ReportName, Widgets: p.Widgets}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("liveboard: encode pin %s: %w", p.ID, err)
	}
	return string(b) + "\n", nil
}

func diffLines(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lineArray)

	var lines []DiffLine
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, DiffLine{Type: DiffContext, Text: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, DiffLine{Type: DiffRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, DiffLine{Type: DiffAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return lines
}

// ComparePins diffs two stored pins by id.
func (s *Service) ComparePins(ctx context.Context, fromID, toID string) (PinDiff, error) {
	from, err := s.pins.Get(ctx, fromID)
	if err != nil {
		return PinDiff{}, err
	}
	to, err := s.pins.Get(ctx, toID)
	if err != nil {
		return PinDiff{}, err
	}
	return DiffPins(from, to)
}
