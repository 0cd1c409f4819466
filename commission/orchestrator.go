package commission

import (
	"fmt"
	"time"
)

// PaymentMethod is how the patient settled the service value.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCredit  PaymentMethod = "credit"
	PaymentDebit   PaymentMethod = "debit"
	PaymentPix     PaymentMethod = "pix"
	PaymentVoucher PaymentMethod = "voucher"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentPix, PaymentVoucher:
		return true
	}
	return false
}

// Appointment carries the appointment fields the engine needs to complete it.
type Appointment struct {
	ID               uint
	ClinicID         uint
	ProfessionalID   uint
	ProfessionalName string
	Procedure        string
	Date             time.Time
}

// Staff identifies an optional supplementary beneficiary on the appointment.
type Staff struct {
	ID   uint
	Name string
}

// CompletionInput is everything CompleteAppointment needs. Quantity nil
// defaults to 1; an explicit non-positive quantity is rejected. Seller and
// Receptionist are optional, but staff-specific seller/reception rules fire
// even when they are absent, since the rule itself names the beneficiary.
type CompletionInput struct {
	Appointment   Appointment
	ServiceValue  float64
	Quantity      *int
	PaymentMethod PaymentMethod
	Rules         []Rule
	Seller        *Staff
	Receptionist  *Staff
}

// Record is one commission owed to one beneficiary for one completed
// appointment. The rule's type, unit, and value are snapshotted at firing
// time, not referenced live.
type Record struct {
	AppointmentID   uint
	ClinicID        uint
	ProfessionalID  uint
	Beneficiary     BeneficiaryType
	BeneficiaryID   uint
	BeneficiaryName string
	Procedure       string
	ServiceValue    float64
	Quantity        int
	RuleID          uint
	RuleType        CalculationType
	RuleUnit        CalculationUnit
	RuleValue       float64
	Amount          float64
	Date            time.Time
	Status          Status
}

// EntryKind distinguishes the two ledger entry directions.
type EntryKind string

const (
	EntryRevenue EntryKind = "revenue"
	EntryExpense EntryKind = "expense"
)

// LedgerEntry is a draft financial entry produced by completion. Persisting
// it is the caller's job.
type LedgerEntry struct {
	Kind          EntryKind
	Amount        float64
	Description   string
	PaymentMethod PaymentMethod
	AppointmentID uint
	ClinicID      uint
	Beneficiary   BeneficiaryType
	BeneficiaryID uint
	Date          time.Time
}

// CompletionResult bundles everything a completed appointment produces: N
// pending commission records, one revenue entry for the full service value,
// and one expense entry per commission record.
type CompletionResult struct {
	Records  []Record
	Revenue  LedgerEntry
	Expenses []LedgerEntry
}

// CompleteAppointment runs the matcher and calculator across all beneficiary
// categories of one completed appointment. The professional category is
// always considered; seller and reception only when the corresponding staff
// member is supplied or a winning rule explicitly names a beneficiary of
// that category. Pure: it neither reads nor writes storage.
func CompleteAppointment(in CompletionInput) (*CompletionResult, error) {
	if in.ServiceValue <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrNonPositiveServiceValue, in.ServiceValue)
	}
	quantity := 1
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrNonPositiveQuantity, *in.Quantity)
		}
		quantity = *in.Quantity
	}
	if !ValidPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("unknown payment method %q", in.PaymentMethod)
	}

	ctx := MatchContext{
		ClinicID:       in.Appointment.ClinicID,
		ProfessionalID: in.Appointment.ProfessionalID,
		Procedure:      in.Appointment.Procedure,
		Date:           in.Appointment.Date,
	}
	winners := SelectWinningRules(in.Rules, ctx)

	result := &CompletionResult{
		Revenue: LedgerEntry{
			Kind:          EntryRevenue,
			Amount:        in.ServiceValue,
			Description:   fmt.Sprintf("Service revenue: %s by %s", in.Appointment.Procedure, in.Appointment.ProfessionalName),
			PaymentMethod: in.PaymentMethod,
			AppointmentID: in.Appointment.ID,
			ClinicID:      in.Appointment.ClinicID,
			Date:          in.Appointment.Date,
		},
	}

	for _, rule := range winners {
		beneficiaryID, beneficiaryName, ok := resolveBeneficiary(rule, in)
		if !ok {
			continue
		}

		amount, err := ComputeAmount(rule, in.ServiceValue, quantity)
		if err != nil {
			return nil, err
		}

		record := Record{
			AppointmentID:   in.Appointment.ID,
			ClinicID:        in.Appointment.ClinicID,
			ProfessionalID:  in.Appointment.ProfessionalID,
			Beneficiary:     rule.Beneficiary,
			BeneficiaryID:   beneficiaryID,
			BeneficiaryName: beneficiaryName,
			Procedure:       in.Appointment.Procedure,
			ServiceValue:    in.ServiceValue,
			Quantity:        quantity,
			RuleID:          rule.ID,
			RuleType:        rule.Type,
			RuleUnit:        rule.Unit,
			RuleValue:       rule.Value,
			Amount:          amount,
			Date:            in.Appointment.Date,
			Status:          StatusPending,
		}
		result.Records = append(result.Records, record)

		result.Expenses = append(result.Expenses, LedgerEntry{
			Kind:          EntryExpense,
			Amount:        amount,
			Description:   fmt.Sprintf("Commission to %s (%s): %s", beneficiaryName, rule.Beneficiary, describeRule(rule, quantity)),
			AppointmentID: in.Appointment.ID,
			ClinicID:      in.Appointment.ClinicID,
			Beneficiary:   rule.Beneficiary,
			BeneficiaryID: beneficiaryID,
			Date:          in.Appointment.Date,
		})
	}

	return result, nil
}

// resolveBeneficiary decides who a winning rule actually pays, or that the
// rule produces no record for this appointment.
//
// Professional rules always pay the performing professional; a rule that
// explicitly names a different professional is skipped. Seller and reception
// rules pay the staff member the rule names when it names one, falling back
// to the staff member assigned on the appointment; a category-wide rule with
// no assigned staff member pays no one.
func resolveBeneficiary(rule Rule, in CompletionInput) (uint, string, bool) {
	switch rule.Beneficiary {
	case BeneficiaryProfessional:
		if rule.BeneficiaryID != nil && *rule.BeneficiaryID != in.Appointment.ProfessionalID {
			return 0, "", false
		}
		return in.Appointment.ProfessionalID, in.Appointment.ProfessionalName, true
	case BeneficiarySeller:
		return resolveAssigned(rule, in.Seller)
	case BeneficiaryReception:
		return resolveAssigned(rule, in.Receptionist)
	}
	return 0, "", false
}

func resolveAssigned(rule Rule, assigned *Staff) (uint, string, bool) {
	if rule.BeneficiaryID != nil {
		name := ""
		if assigned != nil && assigned.ID == *rule.BeneficiaryID {
			name = assigned.Name
		}
		return *rule.BeneficiaryID, name, true
	}
	if assigned == nil {
		return 0, "", false
	}
	return assigned.ID, assigned.Name, true
}

func describeRule(rule Rule, quantity int) string {
	if rule.Type == CalculationPercentage {
		return fmt.Sprintf("%g%% of service value", rule.Value)
	}
	if rule.Unit == UnitAppointment {
		return fmt.Sprintf("fixed %g per appointment", rule.Value)
	}
	return fmt.Sprintf("fixed %g per %s x %d", rule.Value, rule.Unit, quantity)
}
