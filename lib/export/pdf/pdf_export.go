package pdfexport

import (
	"bytes"
	"fmt"
	requestapimodels "policy-portal-backend/models/api/request"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 7.0
)

// GenerateApprovalSheet renders one request with its step timeline and decision history.
func GenerateApprovalSheet(view requestapimodels.RequestView) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("GenerateApprovalSheet panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Approval sheet "+view.ID, true)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 10, tr("Approval sheet"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 11)
	writeField(pdf, tr, "Request", view.ID)
	writeField(pdf, tr, "Policy", view.PolicyName)
	writeField(pdf, tr, "Created by", view.CreatedByUserName)
	writeField(pdf, tr, "Created at", view.CreatedAt.Format("02.01.2006 15:04"))
	writeField(pdf, tr, "Status", view.Status.ToHuman())
	pdf.Ln(4)

	if view.Progress != nil && len(view.Progress.Steps) != 0 {
		writeSection(pdf, tr, "Workflow")
		writeRow(pdf, tr, true, []float64{20, 90, 70}, "Step", "Role", "State")
		for _, step := range view.Progress.Steps {
			role := step.RoleName
			if step.IsFinalStep {
				role += " (final)"
			}
			writeRow(pdf, tr, false, []float64{20, 90, 70}, fmt.Sprint(step.StepOrder+1), role, step.State)
		}
		pdf.Ln(4)
	}

	writeSection(pdf, tr, "Decisions")
	if len(view.Approvals) == 0 {
		pdf.CellFormat(0, lineHeight, tr("No decisions yet"), "", 1, "L", false, 0, "")
	}
	for _, approval := range view.Approvals {
		date := ""
		if approval.ActionDate != nil {
			date = approval.ActionDate.Format("02.01.2006 15:04")
		}
		writeRow(pdf, tr, false, []float64{60, 40, 80}, approval.ApproverUserName, string(approval.Status), date)
		if approval.Comment != "" {
			pdf.SetFont(fontFamily, "I", 10)
			pdf.MultiCell(0, lineHeight-1, tr(approval.Comment), "", "L", false)
			pdf.SetFont(fontFamily, "", 11)
		}
	}
	if pdf.Error() != nil {
		return nil, pdf.Error()
	}

	buf := new(bytes.Buffer)
	err = pdf.Output(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeField(pdf *fpdf.Fpdf, tr func(string) string, name, value string) {
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(35, lineHeight, tr(name+":"), "", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 11)
	pdf.CellFormat(0, lineHeight, tr(value), "", 1, "L", false, 0, "")
}

func writeSection(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont(fontFamily, "B", 13)
	pdf.CellFormat(0, lineHeight+1, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(1)
	pdf.SetFont(fontFamily, "", 11)
}

func writeRow(pdf *fpdf.Fpdf, tr func(string) string, header bool, widths []float64, values ...string) {
	if header {
		pdf.SetFont(fontFamily, "B", 11)
		pdf.SetFillColor(221, 235, 247)
	}
	for idx, value := range values {
		pdf.CellFormat(widths[idx], lineHeight, tr(value), "1", 0, "L", header, 0, "")
	}
	pdf.Ln(-1)
	if header {
		pdf.SetFont(fontFamily, "", 11)
	}
}
