package hostel

import (
	"context"
	"fmt"
	"strings"
)

// SubmitComplaint files a complaint against the room the student lives in now.
func (s *Store) SubmitComplaint(ctx context.Context, studentID, title, body string) (*Complaint, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidInput
	}

	var created Complaint
	err := s.update(ctx, func(doc *Document) ([]Event, error) {
		student := doc.student(studentID)
		if student == nil {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
		}
		created = Complaint{
			ComplaintID:     s.newID("C"),
			FromAllotmentID: studentID,
			RoomID:          student.RoomID,
			Title:           title,
			Body:            body,
			Status:          ComplaintNew,
			Date:            s.today(),
		}
		doc.Complaints = append(doc.Complaints, created)

		return []Event{{
			Type:      EventComplaintSubmitted,
			StudentID: studentID,
			EntityID:  created.ComplaintID,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateComplaintStatus sets any allowed status regardless of the current one.
// Moving to Resolved stamps the resolution date; it is never cleared.
func (s *Store) UpdateComplaintStatus(ctx context.Context, complaintID string, status ComplaintStatus) (*Complaint, error) {
	if !validComplaintStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var updated Complaint
	err := s.update(ctx, func(doc *Document) ([]Event, error) {
		c := doc.complaint(complaintID)
		if c == nil {
			return nil, fmt.Errorf("%w: %s", ErrComplaintNotFound, complaintID)
		}
		c.Status = status
		if status == ComplaintResolved {
			resolved := s.today()
			c.ResolutionDate = &resolved
		}
		updated = c.clone()

		return []Event{{
			Type:      EventComplaintStatus,
			StudentID: c.FromAllotmentID,
			EntityID:  c.ComplaintID,
			Data:      map[string]string{"status": string(status)},
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c Complaint) clone() Complaint {
	if c.ResolutionDate != nil {
		at := *c.ResolutionDate
		c.ResolutionDate = &at
	}
	return c
}
