package payroll

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"hrleave/internal/domain/core"
	"hrleave/internal/domain/leave"
	"hrleave/internal/domain/policy"
)

var ErrInvalidPeriod = errors.New("period end before period start")

// PenaltyTracker is the onboarding tracker's payroll-facing surface.
type PenaltyTracker interface {
	ApplyFirstMonthPenaltyIfDue(ctx context.Context, employeeID string, periodEnd time.Time) (float64, error)
}

type Service struct {
	Store      StoreAPI
	Directory  core.DirectoryAPI
	Onboarding PenaltyTracker
	Catalog    *policy.Catalog
	PayslipDir string
}

func NewService(store StoreAPI, directory core.DirectoryAPI, onboarding PenaltyTracker, catalog *policy.Catalog, payslipDir string) *Service {
	return &Service{Store: store, Directory: directory, Onboarding: onboarding, Catalog: catalog, PayslipDir: payslipDir}
}

// ComputeLeaveImpact folds approved leave overlapping the period, the static
// paid/unpaid classification and the first-month penalty into one deduction
// report. The only mutation anywhere in this path is the tracker's one-shot
// penalty flag; everything else is re-derivable.
func (s *Service) ComputeLeaveImpact(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (PayslipLeaveImpact, error) {
	if periodEnd.Before(periodStart) {
		return PayslipLeaveImpact{}, ErrInvalidPeriod
	}

	emp, err := s.Directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return PayslipLeaveImpact{}, err
	}

	apps, err := s.Store.ApprovedLeaveOverlapping(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return PayslipLeaveImpact{}, err
	}
	holidayDates, err := s.Store.Holidays(ctx, periodStart, periodEnd)
	if err != nil {
		return PayslipLeaveImpact{}, err
	}
	holidays := leave.NewHolidayCalendar(holidayDates)

	impact := PayslipLeaveImpact{
		EmployeeID:               employeeID,
		PeriodStart:              periodStart,
		PeriodEnd:                periodEnd,
		LeaveDeductionAmount:     decimal.Zero,
		PerformancePenaltyAmount: decimal.Zero,
		Breakdown:                make(map[string]LeaveLine),
	}

	for _, app := range apps {
		days := daysInPeriod(app, periodStart, periodEnd, holidays)
		if days == 0 {
			continue
		}

		leaveType, ok := s.Catalog.Lookup(app.TypeCode)
		if !ok {
			// Unknown codes cannot be classified; treat as unpaid so a stale
			// row never silently inflates paid leave.
			leaveType = policy.LeaveType{Name: string(app.TypeCode), IsPaid: false}
		}

		line := impact.Breakdown[leaveType.Name]
		line.Days += days
		line.IsPaid = leaveType.IsPaid
		line.Deduction = decimal.Zero
		if leaveType.IsPaid {
			impact.PaidLeaveDays += days
		} else {
			impact.UnpaidLeaveDays += days
		}
		impact.Breakdown[leaveType.Name] = line
	}

	for name, line := range impact.Breakdown {
		if line.IsPaid {
			continue
		}
		line.Deduction = UnpaidDeduction(emp.BaseSalary, line.Days)
		impact.Breakdown[name] = line
		impact.LeaveDeductionAmount = impact.LeaveDeductionAmount.Add(line.Deduction)
	}

	penalty, err := s.Onboarding.ApplyFirstMonthPenaltyIfDue(ctx, employeeID, periodEnd)
	if err != nil {
		return PayslipLeaveImpact{}, err
	}
	impact.PerformancePenaltyAmount = decimal.NewFromFloat(penalty).Round(2)
	impact.TotalDeduction = impact.LeaveDeductionAmount.Add(impact.PerformancePenaltyAmount)

	totals, err := s.Directory.GetAttendanceTotals(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return PayslipLeaveImpact{}, err
	}
	impact.Attendance = totals

	return impact, nil
}

// daysInPeriod clamps an approved application to the payroll period and
// counts its working days there. Half-day applications contribute their
// fractional total when their single day falls inside the period.
func daysInPeriod(app leave.Application, periodStart, periodEnd time.Time, holidays leave.HolidayCalendar) float64 {
	start, end, ok := ClampToPeriod(app.StartDate, app.EndDate, periodStart, periodEnd)
	if !ok {
		return 0
	}
	if app.IsHalfDay {
		return app.TotalDays
	}
	return leave.CountWorkingDays(start, end, holidays)
}

// GeneratePayslipImpactPDF renders the leave-impact report for handing to the
// employee alongside the payslip.
func (s *Service) GeneratePayslipImpactPDF(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (string, error) {
	impact, err := s.ComputeLeaveImpact(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return "", err
	}
	emp, err := s.Directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.PayslipDir, 0o755); err != nil {
		return "", err
	}
	fileName := fmt.Sprintf("leave-impact-%s-%s.pdf", employeeID, periodStart.Format("2006-01"))
	filePath := filepath.Join(s.PayslipDir, fileName)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Impact Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", emp.FirstName, emp.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Paid leave days: %g", impact.PaidLeaveDays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Unpaid leave days: %g", impact.UnpaidLeaveDays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Leave deduction: %s", impact.LeaveDeductionAmount.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Performance penalty: %s", impact.PerformancePenaltyAmount.StringFixed(2)))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Breakdown")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	names := make([]string, 0, len(impact.Breakdown))
	for name := range impact.Breakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		line := impact.Breakdown[name]
		kind := "paid"
		if !line.IsPaid {
			kind = "unpaid"
		}
		pdf.Cell(0, 7, fmt.Sprintf("%s: %g days (%s), deduction %s", name, line.Days, kind, line.Deduction.StringFixed(2)))
		pdf.Ln(6)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
