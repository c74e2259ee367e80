package xlsexport

import (
	"bytes"
	"fmt"
	requestapimodels "policy-portal-backend/models/api/request"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportRequestList(list []requestapimodels.RequestView) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var requestHeaders = []string{"Request", "Policy", "Created by", "Created at", "Status", "Decisions", "Last comment"}

func (i impl) ExportRequestList(list []requestapimodels.RequestView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("failed to close xlsx file")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, requestHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write xlsx header")
	}
	if len(list) != 0 {
		_, err = writeRequestData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "failed to write xlsx data")
		}
	}
	if err = f.SetSheetName(sheet, "Requests"); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

func writeRequestData(f *excelize.File, sheet string, list []requestapimodels.RequestView, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(requestHeaders), row+len(list)); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		// "Request"
		col := 1
		if err := writeColumn(f, sheet, col, row, item.ID); err != nil {
			return row, err
		}

		// "Policy"
		col++
		if err := writeColumn(f, sheet, col, row, item.PolicyName); err != nil {
			return row, err
		}

		// "Created by"
		col++
		if err := writeColumn(f, sheet, col, row, item.CreatedByUserName); err != nil {
			return row, err
		}

		// "Created at"
		col++
		if !item.CreatedAt.IsZero() {
			if err := writeColumn(f, sheet, col, row, item.CreatedAt.Format("02.01.2006 15:04")); err != nil {
				return row, err
			}
		}

		// "Status"
		col++
		if err := writeColumn(f, sheet, col, row, item.Status.ToHuman()); err != nil {
			return row, err
		}

		// "Decisions"
		col++
		if err := writeColumn(f, sheet, col, row, decisionSummary(item.Approvals)); err != nil {
			return row, err
		}

		// "Last comment"
		col++
		if len(item.Approvals) != 0 {
			if err := writeColumn(f, sheet, col, row, item.Approvals[len(item.Approvals)-1].Comment); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}

func decisionSummary(list []requestapimodels.ApprovalView) string {
	parts := make([]string, 0, len(list))
	for _, item := range list {
		parts = append(parts, fmt.Sprintf("%v: %v", item.ApproverUserName, item.Status))
	}
	return strings.Join(parts, "\n")
}
