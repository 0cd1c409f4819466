package commission

import "sort"

// Summary is one beneficiary's totals over a reporting window.
type Summary struct {
	Beneficiary     BeneficiaryType
	BeneficiaryID   uint
	BeneficiaryName string
	AppointmentIDs  []uint
	Appointments    int
	TotalRevenue    float64
	TotalCommission float64
	PendingAmount   float64
	PaidAmount      float64
	EffectiveRate   float64
}

type summaryKey struct {
	beneficiary BeneficiaryType
	staffID     uint
}

// Summarize groups commission records per beneficiary and derives totals.
// TotalCommission covers every supplied record regardless of status, while
// the pending and paid buckets split it by status; callers that want paid-only
// or pending-only reporting filter the records before calling. EffectiveRate
// is the commission as a percentage of revenue, zero when revenue is zero.
// Results come back ordered by beneficiary category then staff ID, so the
// same records always produce the same report.
func Summarize(records []Record) []Summary {
	byKey := make(map[summaryKey]*Summary)
	for _, rec := range records {
		key := summaryKey{beneficiary: rec.Beneficiary, staffID: rec.BeneficiaryID}
		s, ok := byKey[key]
		if !ok {
			s = &Summary{
				Beneficiary:     rec.Beneficiary,
				BeneficiaryID:   rec.BeneficiaryID,
				BeneficiaryName: rec.BeneficiaryName,
			}
			byKey[key] = s
		}
		if s.BeneficiaryName == "" {
			s.BeneficiaryName = rec.BeneficiaryName
		}

		if !containsID(s.AppointmentIDs, rec.AppointmentID) {
			s.AppointmentIDs = append(s.AppointmentIDs, rec.AppointmentID)
			s.Appointments++
			s.TotalRevenue += rec.ServiceValue
		}
		s.TotalCommission += rec.Amount
		switch rec.Status {
		case StatusPending:
			s.PendingAmount += rec.Amount
		case StatusPaid:
			s.PaidAmount += rec.Amount
		}
	}

	out := make([]Summary, 0, len(byKey))
	for _, s := range byKey {
		if s.TotalRevenue > 0 {
			s.EffectiveRate = s.TotalCommission / s.TotalRevenue * 100
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Beneficiary != out[j].Beneficiary {
			return out[i].Beneficiary < out[j].Beneficiary
		}
		return out[i].BeneficiaryID < out[j].BeneficiaryID
	})
	return out
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
