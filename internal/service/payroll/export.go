package payroll

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetPayslips = "Payslips"
	sheetDaily    = "Daily"
	sheetSummary  = "Summary"
)

// ExportRun renders a run's stored payslips as an xlsx workbook. It reads
// stored payslips only, so a finalized run always exports the same figures.
func (s *PayrollServiceImpl) ExportRun(ctx context.Context, id string) (payroll.ExportFile, error) {
	run, err := s.Runs.GetByID(ctx, id)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	payslips, err := s.Payslips.ListByRun(ctx, id)
	if err != nil {
		return payroll.ExportFile{}, err
	}

	content, err := renderWorkbook(run, payslips)
	if err != nil {
		slog.Error("failed to render payroll export", "run_id", id, "error", err)
		return payroll.ExportFile{}, fmt.Errorf("failed to render export: %w", err)
	}

	resp := payroll.NewRunResponse(run, nil)
	return payroll.ExportFile{
		Name:        fmt.Sprintf("payroll_%s_%s.xlsx", resp.PeriodStart, resp.PeriodEnd),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func renderWorkbook(run payroll.Run, payslips []payroll.Payslip) ([]byte, error) {
	sorted := make([]payroll.Payslip, len(payslips))
	copy(sorted, payslips)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Snapshot.ZoneName != b.Snapshot.ZoneName {
			return a.Snapshot.ZoneName < b.Snapshot.ZoneName
		}
		if a.StaffName != b.StaffName {
			return a.StaffName < b.StaffName
		}
		return a.StaffID < b.StaffID
	})

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetPayslips)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetDaily); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	w := sheetWriter{f: f, headerStyle: headerStyle}
	w.payslips(sorted)
	w.daily(sorted)
	w.summary(run, sorted)
	if w.err != nil {
		return nil, w.err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first write error so rows can be emitted without
// checking each cell.
type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	err         error
}

func (w *sheetWriter) row(sheet string, row int, values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	for i, v := range values {
		if d, ok := v.(decimal.Decimal); ok {
			values[i] = d.InexactFloat64()
		}
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) header(sheet string, titles ...string) {
	values := make([]interface{}, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	w.row(sheet, 1, values...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, "A1", last, w.headerStyle)
	if w.err != nil {
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(titles))
	w.err = w.f.SetColWidth(sheet, "A", lastCol, 16)
}

func (w *sheetWriter) payslips(payslips []payroll.Payslip) {
	w.header(sheetPayslips,
		"Staff", "Zone", "Regular Hours", "Overtime Hours", "Sunday Hours", "Holiday Hours",
		"Leave Days", "Leave Pay", "Gross Pay", "PAYE", "UIF", "Custom Deductions", "Pension",
		"Total Deductions", "Net Pay", "Employer UIF", "SDL", "Employer Pension", "Flags",
	)
	for i, p := range payslips {
		snap := p.Snapshot
		custom := decimal.Zero
		for _, c := range snap.Deductions.Custom {
			custom = custom.Add(c.Amount)
		}
		w.row(sheetPayslips, i+2,
			p.StaffName, snap.ZoneName,
			p.Regular, p.Overtime, p.Sunday, p.Holiday,
			snap.LeaveDays, snap.LeavePay, p.GrossPay,
			snap.Deductions.PAYE, snap.Deductions.UIFEmployee, custom, snap.Deductions.PensionEmployee,
			p.Deductions, p.NetPay,
			snap.Employer.UIF, snap.Employer.SDL, snap.Employer.Pension,
			joinFlags(snap.Flags),
		)
	}
}

func (w *sheetWriter) daily(payslips []payroll.Payslip) {
	w.header(sheetDaily,
		"Staff", "Date", "Regular Hours", "Overtime Hours", "Sunday Hours", "Holiday Hours",
		"Leave", "Edited", "Edited By", "Flags",
	)
	row := 2
	for _, p := range payslips {
		for _, d := range p.Snapshot.Days {
			leaveType := ""
			if d.LeaveType != nil {
				leaveType = *d.LeaveType
			}
			editedBy := ""
			if d.EditedBy != nil {
				editedBy = *d.EditedBy
			}
			w.row(sheetDaily, row,
				p.StaffName, d.Date,
				d.Regular, d.Overtime, d.Sunday, d.Holiday,
				leaveType, d.IsEdited, editedBy, joinFlags(d.Flags),
			)
			row++
		}
	}
}

func (w *sheetWriter) summary(run payroll.Run, payslips []payroll.Payslip) {
	resp := payroll.NewRunResponse(run, payslips)
	t := resp.Totals

	w.header(sheetSummary, "Item", "Value")
	rows := [][]interface{}{
		{"Period Start", resp.PeriodStart},
		{"Period End", resp.PeriodEnd},
		{"Status", string(run.Status)},
		{"Staff", t.TotalStaff},
		{"Regular Hours", t.TotalRegularHours},
		{"Overtime Hours", t.TotalOvertimeHours},
		{"Sunday Hours", t.TotalSundayHours},
		{"Holiday Hours", t.TotalHolidayHours},
		{"Leave Pay", t.TotalLeavePay},
		{"Gross Pay", t.GrandTotal},
		{"PAYE", t.TotalPaye},
		{"UIF (employee)", t.TotalUif},
		{"UIF (employer)", t.TotalUifEmployer},
		{"SDL", t.TotalSdl},
		{"Total Deductions", t.TotalDeductions},
		{"Net Pay", t.TotalNet},
	}
	for i, r := range rows {
		w.row(sheetSummary, i+2, r...)
	}
}

func joinFlags(flags []payroll.Flag) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}
