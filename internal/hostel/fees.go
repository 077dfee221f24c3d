package hostel

import (
	"context"
	"fmt"
	"strings"
)

// GenerateMonthlyFees raises a Due fee for every allotted student that has
// none for month yet. Running it again for the same month only picks up
// students allotted since the previous run.
func (s *Store) GenerateMonthlyFees(ctx context.Context, month string, amount float64) ([]MonthlyFee, error) {
	month = strings.TrimSpace(month)
	if month == "" || amount <= 0 {
		return nil, ErrInvalidInput
	}

	var created []MonthlyFee
	err := s.update(ctx, func(doc *Document) ([]Event, error) {
		created = nil
		for _, a := range doc.Allotments {
			if doc.hasFee(a.StudentID, month) {
				continue
			}
			var name string
			if st := doc.student(a.StudentID); st != nil {
				name = st.Name
			}
			fee := MonthlyFee{
				FeeID:       s.newID("FEE"),
				StudentID:   a.StudentID,
				StudentName: name,
				Month:       month,
				Amount:      amount,
				Status:      FeeDue,
				Date:        s.today(),
			}
			doc.MonthlyFees = append(doc.MonthlyFees, fee)
			created = append(created, fee)
		}
		if len(created) == 0 {
			return nil, nil
		}

		return []Event{{
			Type:     EventMonthlyFeesGenerated,
			EntityID: month,
			Data: map[string]any{
				"month":  month,
				"amount": amount,
				"count":  len(created),
			},
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ToggleFeeStatus flips a fee between Paid and Due.
func (s *Store) ToggleFeeStatus(ctx context.Context, feeID string) (*MonthlyFee, error) {
	var updated MonthlyFee
	err := s.update(ctx, func(doc *Document) ([]Event, error) {
		fee := doc.fee(feeID)
		if fee == nil {
			return nil, fmt.Errorf("%w: %s", ErrFeeNotFound, feeID)
		}
		if fee.Status == FeePaid {
			fee.Status = FeeDue
		} else {
			fee.Status = FeePaid
		}
		updated = *fee

		return []Event{{
			Type:      EventMonthlyFeeToggled,
			StudentID: fee.StudentID,
			EntityID:  fee.FeeID,
			Data:      map[string]string{"status": string(fee.Status)},
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
