// Package export produces XLSX workbooks for recruiter-facing downloads.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"hireboard/hiring-service/internal/hiring"
)

// ApplicantsXLSX renders a job's applicant list as an XLSX workbook.
// Rows keep the application order of the input slice.
func ApplicantsXLSX(job *hiring.Job, apps []hiring.ApplicantProfile) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Applicants"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headers := []string{"Candidate", "Email", "Status", "Applied At", "Interview At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set header %q: %w", h, err)
		}
	}

	for row, a := range apps {
		interviewAt := ""
		if a.InterviewAt != nil {
			interviewAt = a.InterviewAt.UTC().Format("2006-01-02 15:04")
		}
		values := []any{
			a.Candidate.Name,
			a.Candidate.Email,
			string(a.Status),
			a.AppliedAt.UTC().Format("2006-01-02 15:04"),
			interviewAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	// Job title in the sheet's document properties, so the download is
	// identifiable after saving.
	_ = f.SetDocProps(&excelize.DocProperties{Title: job.Title})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
