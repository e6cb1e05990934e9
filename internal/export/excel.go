package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/matching"
)

const (
	summarySheet      = "Summary"
	candidatesSheet   = "Ranked Candidates"
	explanationsSheet = "Explanations"
)

var bandFill = map[matching.ReadinessLevel]string{
	matching.ReadinessReady:      "C6EFCE",
	matching.ReadinessDeveloping: "FFEB9C",
	matching.ReadinessNotReady:   "FFC7CE",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// ExportToExcel writes the ranking into an xlsx workbook and returns the path written.
// The .xlsx extension is appended when missing.
func ExportToExcel(ranking *matching.Ranking, outputPath string) (string, error) {
	if ranking == nil {
		return "", errors.New("ranking is nil")
	}
	if strings.TrimSpace(outputPath) == "" {
		return "", errors.New("output path is required")
	}
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", err
	}
	for _, name := range []string{candidatesSheet, explanationsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	if err := writeSummary(f, ranking); err != nil {
		return "", fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeCandidates(f, ranking); err != nil {
		return "", fmt.Errorf("ranked candidates sheet: %w", err)
	}
	if err := writeExplanations(f, ranking); err != nil {
		return "", fmt.Errorf("explanations sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save %s: %w", outputPath, err)
	}
	return outputPath, nil
}

func writeSummary(f *excelize.File, r *matching.Ranking) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 50); err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	counts := map[matching.ReadinessLevel]int{}
	for _, m := range r.Matches {
		counts[m.ReadinessLevel]++
	}

	rows := [][2]any{
		{"Requirement set:", r.RequirementSetID},
		{"Title:", r.Title},
		{"Version:", r.Version},
		{"Computation:", r.ComputationID},
		{"Reference time:", r.ReferenceTime.UTC().Format(time.RFC3339)},
		{"Candidates considered:", r.Considered},
		{"Candidates ranked:", len(r.Matches)},
		{"Ready:", counts[matching.ReadinessReady]},
		{"Developing:", counts[matching.ReadinessDeveloping]},
		{"Not ready:", counts[matching.ReadinessNotReady]},
	}
	if len(r.Warnings) > 0 {
		rows = append(rows, [2]any{"Warnings:", strings.Join(r.Warnings, "\n")})
	}

	for i, row := range rows {
		label := fmt.Sprintf("A%d", i+1)
		if err := f.SetCellValue(summarySheet, label, row[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(summarySheet, label, label, labelStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), row[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeCandidates(f *excelize.File, r *matching.Ranking) error {
	headers := []string{"Rank", "Candidate", "Name", "Overall", "Skills", "Experience", "Readiness", "Cultural", "Growth", "Level", "Ready In (months)"}
	if err := writeHeader(f, candidatesSheet, headers); err != nil {
		return err
	}
	if err := f.SetColWidth(candidatesSheet, "B", "C", 24); err != nil {
		return err
	}

	styles := map[matching.ReadinessLevel]int{}
	for level, color := range bandFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		styles[level] = id
	}

	for i, m := range r.Matches {
		row := i + 2
		values := []any{
			i + 1,
			m.CandidateID,
			m.CandidateName,
			m.OverallScore,
			m.SubScores.Skills,
			m.SubScores.Experience,
			m.SubScores.Readiness,
			m.SubScores.Cultural,
			m.SubScores.Growth,
			string(m.ReadinessLevel),
			m.Explanation.EstimatedReadinessMonths,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(candidatesSheet, cell, v); err != nil {
				return err
			}
		}

		if style, ok := styles[m.ReadinessLevel]; ok {
			last, _ := excelize.CoordinatesToCellName(len(values), row)
			if err := f.SetCellStyle(candidatesSheet, fmt.Sprintf("A%d", row), last, style); err != nil {
				return err
			}
		}
	}

	if len(r.Matches) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), len(r.Matches)+1)
		if err := f.AutoFilter(candidatesSheet, "A1:"+last, nil); err != nil {
			return err
		}
	}
	return freezeHeader(f, candidatesSheet)
}

func writeExplanations(f *excelize.File, r *matching.Ranking) error {
	if err := writeHeader(f, explanationsSheet, []string{"Rank", "Candidate", "Section", "Details"}); err != nil {
		return err
	}
	if err := f.SetColWidth(explanationsSheet, "B", "C", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(explanationsSheet, "D", "D", 80); err != nil {
		return err
	}

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	row := 2
	for i, m := range r.Matches {
		ex := m.Explanation
		sections := []struct {
			name  string
			items []string
		}{
			{"Strengths", ex.Strengths},
			{"Gaps", ex.Gaps},
			{"Development path", ex.DevelopmentPath},
			{"Risk factors", ex.RiskFactors},
			{"Recommendations", ex.Recommendations},
		}

		for _, s := range sections {
			if len(s.items) == 0 {
				continue
			}
			values := []any{i + 1, m.CandidateID, s.name, strings.Join(s.items, "\n")}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(explanationsSheet, cell, v); err != nil {
					return err
				}
			}
			if err := f.SetCellStyle(explanationsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), wrapStyle); err != nil {
				return err
			}
			row++
		}
	}
	return freezeHeader(f, explanationsSheet)
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
