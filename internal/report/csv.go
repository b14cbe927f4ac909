package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/atotto/clipboard"

	"github.com/ivyxu/EquityGo/internal/equity"
)

// WriteCSV writes the yearly projection detail as CSV, one row per
// year, for spreadsheet import.
func WriteCSV(w io.Writer, res *equity.ProjectionResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"year", "share_price", "starting_cash", "ending_cash",
		"wages", "other_income", "exercise_ordinary", "exercise_costs",
		"sale_proceeds", "agi", "regular_tax", "amt_tax", "total_tax",
		"donation_value", "company_match",
		"federal_deduction_used", "federal_carryforward", "federal_expired",
		"state_deduction_used", "state_carryforward", "state_expired",
		"amt_credit_generated", "amt_credit_used", "amt_credit_balance",
		"pledge_obligated", "pledge_fulfilled", "pledge_expired_shares",
		"equity_value", "net_worth",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, y := range res.Years {
		row := []string{
			strconv.Itoa(y.Year),
			y.SharePrice.StringFixed(4),
			y.StartingCash.StringFixed(2),
			y.EndingCash.StringFixed(2),
			y.Wages.StringFixed(2),
			y.OtherIncome.StringFixed(2),
			y.ExerciseOrdinary.StringFixed(2),
			y.ExerciseCosts.StringFixed(2),
			y.SaleProceeds.StringFixed(2),
			y.AGI.StringFixed(2),
			y.RegularTax.StringFixed(2),
			y.AMTTax.StringFixed(2),
			y.TaxPaid.StringFixed(2),
			y.DonationValue.StringFixed(2),
			y.CompanyMatch.StringFixed(2),
			y.FederalCharity.CurrentYearUsed.StringFixed(2),
			y.FederalCharity.TotalAvailable().StringFixed(2),
			y.FederalCharity.ExpiredThisYear.StringFixed(2),
			y.StateCharity.CurrentYearUsed.StringFixed(2),
			y.StateCharity.TotalAvailable().StringFixed(2),
			y.StateCharity.ExpiredThisYear.StringFixed(2),
			y.AMTCredit.GeneratedThisYear.StringFixed(2),
			y.AMTCredit.UsedThisYear.StringFixed(2),
			y.AMTCredit.Balance.StringFixed(2),
			strconv.FormatInt(y.Pledge.TotalObligated(), 10),
			strconv.FormatInt(y.Pledge.TotalFulfilled(), 10),
			strconv.FormatInt(y.PledgeExpiredShares, 10),
			y.EquityValue.StringFixed(2),
			y.NetWorth.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %d: %w", y.Year, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CopyCSV puts the CSV rendering of the result on the system
// clipboard.
func CopyCSV(res *equity.ProjectionResult) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, res); err != nil {
		return err
	}
	if err := clipboard.WriteAll(buf.String()); err != nil {
		return fmt.Errorf("copy report to clipboard: %w", err)
	}
	return nil
}
