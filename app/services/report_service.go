package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/xuri/excelize/v2"
)

// ReportService builds downloadable report files for clinic owners
type ReportService interface {
	CommissionSummaryWorkbook(from, to time.Time, summaries []commission.Summary) (filename string, content []byte, err error)
}

type ReportServiceImpl struct{}

func NewReportService() ReportService {
	return &ReportServiceImpl{}
}

// CommissionSummaryWorkbook renders one sheet per beneficiary category with
// the per-beneficiary totals over the reporting window
func (s *ReportServiceImpl) CommissionSummaryWorkbook(from, to time.Time, summaries []commission.Summary) (string, []byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	byCategory := make(map[commission.BeneficiaryType][]commission.Summary)
	order := make([]commission.BeneficiaryType, 0, 3)
	for _, sum := range summaries {
		if _, ok := byCategory[sum.Beneficiary]; !ok {
			order = append(order, sum.Beneficiary)
		}
		byCategory[sum.Beneficiary] = append(byCategory[sum.Beneficiary], sum)
	}
	if len(order) == 0 {
		order = append(order, commission.BeneficiaryProfessional)
	}

	header := []string{"Beneficiary ID", "Beneficiary", "Appointments", "Total Revenue", "Total Commission", "Pending", "Paid", "Effective Rate (%)"}

	for i, category := range order {
		name := sheetNameForCategory(category)
		if i == 0 {
			xl.SetSheetName(xl.GetSheetName(0), name)
		} else {
			_, _ = xl.NewSheet(name)
		}

		if err := xl.SetSheetRow(name, "A1", &header); err != nil {
			return "", nil, fmt.Errorf("failed to write header row: %w", err)
		}

		for ri, sum := range byCategory[category] {
			record := []any{
				strconv.FormatUint(uint64(sum.BeneficiaryID), 10),
				sum.BeneficiaryName,
				sum.Appointments,
				sum.TotalRevenue,
				sum.TotalCommission,
				sum.PendingAmount,
				sum.PaidAmount,
				sum.EffectiveRate,
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
			if err := xl.SetSheetRow(name, cellRef, &record); err != nil {
				return "", nil, fmt.Errorf("failed to write summary row: %w", err)
			}
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("commission_summary_%s_to_%s.xlsx", from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

func sheetNameForCategory(category commission.BeneficiaryType) string {
	switch category {
	case commission.BeneficiaryProfessional:
		return "Professionals"
	case commission.BeneficiarySeller:
		return "Sellers"
	case commission.BeneficiaryReception:
		return "Reception"
	default:
		return "Other"
	}
}
