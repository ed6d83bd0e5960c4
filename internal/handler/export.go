package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"jobsite-timeclock/internal/timeclock"
	"jobsite-timeclock/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var timesheetHeaders = []string{
	"Entry ID", "User", "Job site", "Clock in", "Clock out",
	"Worked hours", "Break hours", "Approved", "Approved by", "Notes",
}

// ExportHandler writes timesheets as CSV or XLSX for approvers.
type ExportHandler struct {
	Clock *TimeClockHandler
}

func NewExportHandler(clock *TimeClockHandler) *ExportHandler {
	return &ExportHandler{Clock: clock}
}

func (h *ExportHandler) rows(c *gin.Context) ([]timeclock.TimesheetRow, bool) {
	actor, ok := currentActor(c)
	if !ok {
		return nil, false
	}
	f, ok := h.Clock.entryFilter(c)
	if !ok {
		return nil, false
	}
	rows, err := h.Clock.Svc.Timesheet(c.Request.Context(), actor, f)
	if err != nil {
		util.Fail(c, err)
		return nil, false
	}
	return rows, true
}

func (h *ExportHandler) record(r *timeclock.TimesheetRow) []string {
	loc := h.Clock.Loc
	clockOut, worked, brk, approvedBy := "", "", "", ""
	if r.ClockOutAt != nil {
		clockOut = r.ClockOutAt.In(loc).Format("2006-01-02 15:04")
	}
	if r.WorkedHours.Valid {
		worked = r.WorkedHours.Decimal.StringFixed(2)
	}
	if r.BreakHours.Valid {
		brk = r.BreakHours.Decimal.StringFixed(2)
	}
	if r.ApprovedByID != nil {
		approvedBy = *r.ApprovedByID
	}
	approved := "no"
	if r.IsApproved {
		approved = "yes"
	}
	return []string{
		r.ID,
		r.UserID,
		r.JobSiteName,
		r.ClockInAt.In(loc).Format("2006-01-02 15:04"),
		clockOut,
		worked,
		brk,
		approved,
		approvedBy,
		r.Notes,
	}
}

func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.rows(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"timesheet_%s.csv\"",
		time.Now().In(h.Clock.Loc).Format("20060102")))

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(timesheetHeaders)
	for i := range rows {
		_ = writer.Write(h.record(&rows[i]))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = c.Error(err)
	}
}

func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, ok := h.rows(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Timesheet"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, head := range timesheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, head)
	}
	for idx := range rows {
		for col, v := range h.record(&rows[idx]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, idx+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "C", 20)
	_ = f.SetColWidth(sheetName, "D", "E", 18)
	_ = f.SetColWidth(sheetName, "F", "I", 14)
	_ = f.SetColWidth(sheetName, "J", "J", 40)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"timesheet_%s.xlsx\"",
		time.Now().In(h.Clock.Loc).Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
