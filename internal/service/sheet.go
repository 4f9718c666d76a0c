package service

import (
	"fmt"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

// Homework rows start on sheet row 7: one global header row, reviewer name,
// max, actual, total, then the vk_id/name column header.
const (
	sheetDataFirstRow = 7
	sheetDataLastRow  = 1000
)

const sheetDeadlineNote = "Check deadline: Sunday 23:59"

// buildSheetColumns renders a distribution snapshot into the column layout
// of the check sheet. Every reviewer occupies a pair of columns; rejected
// homeworks go into a three-column tail block.
func buildSheetColumns(subject *models.Subject, snapshot *models.DistributionSnapshot) [][]interface{} {
	columns := make([][]interface{}, 0, 2*len(snapshot.Reviewers)+3)

	for i, plan := range snapshot.Reviewers {
		labels := []interface{}{
			"",
			plan.Reviewer.FullName(),
			"max",
			"actual",
			"total",
			"vk_id",
		}
		values := []interface{}{
			"",
			plan.Reviewer.ID,
			plan.Reviewer.OptimalMax(),
			len(plan.Current),
			countaFormula(2*i + 1),
			"name",
		}
		for _, hw := range plan.Current {
			labels = append(labels, hw.StudentVKID)
			values = append(values, hyperlink(hw.SubmissionURL, hw.StudentName))
		}
		labels = append(labels, "", "")
		values = append(values, "", "")
		columns = append(columns, labels, values)
	}

	if len(snapshot.ErrorHomeworks) > 0 {
		ids := []interface{}{"", "errors", "soho_id"}
		links := []interface{}{"", "", "homework"}
		reasons := []interface{}{"", "", "error"}
		for _, eh := range snapshot.ErrorHomeworks {
			ids = append(ids, eh.Homework.StudentSohoID)
			label := eh.StudentName
			if label == "" {
				label = fmt.Sprintf("soho %d", eh.Homework.StudentSohoID)
			}
			links = append(links, hyperlink(eh.Homework.ChatURL, label))
			reasons = append(reasons, string(eh.Message))
		}
		columns = append(columns, ids, links, reasons)
	}

	// Row zero spans the first four columns: run name, the filename
	// template students must follow, the output folder and the deadline.
	header := []interface{}{
		snapshot.Name,
		subject.Properties.HomeworkFilenameRegexp,
		snapshot.FolderURL,
		sheetDeadlineNote,
	}
	for len(columns) < len(header) {
		columns = append(columns, []interface{}{""})
	}
	for i, cell := range header {
		columns[i][0] = cell
	}
	return columns
}

func hyperlink(url, label string) string {
	return fmt.Sprintf("=HYPERLINK(%q;%q)", url, label)
}

// countaFormula counts the filled homework cells of a value column.
func countaFormula(columnIndex int) string {
	letter := columnLetter(columnIndex)
	return fmt.Sprintf("=COUNTA(%s%d:%s%d)", letter, sheetDataFirstRow, letter, sheetDataLastRow)
}

func columnLetter(index int) string {
	letters := ""
	for index >= 0 {
		letters = string(rune('A'+index%26)) + letters
		index = index/26 - 1
	}
	return letters
}
