package hostel

import (
	"context"
	"fmt"
	"strings"
)

// CreateAllotment houses a new student in a room and records the allotment.
func (s *Store) CreateAllotment(ctx context.Context, in AllotmentInput) (*Allotment, error) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.RoomID = strings.TrimSpace(in.RoomID)
	if in.StudentID == "" || in.RoomID == "" || strings.TrimSpace(in.Name) == "" {
		return nil, ErrInvalidInput
	}
	if !validPaymentStatus(in.PaymentStatus) {
		return nil, fmt.Errorf("%w: payment status %q", ErrInvalidStatus, in.PaymentStatus)
	}

	var created Allotment
	err := s.update(ctx, func(doc *Document) ([]Event, error) {
		if doc.student(in.StudentID) != nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStudent, in.StudentID)
		}
		room := doc.room(in.RoomID)
		if room == nil {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, in.RoomID)
		}
		if room.IsFull() {
			return nil, fmt.Errorf("%w: %s", ErrRoomFull, in.RoomID)
		}

		doc.Students = append(doc.Students, Student{
			AllotmentID: in.StudentID,
			Name:        in.Name,
			Dept:        in.Dept,
			Year:        in.Year,
			PhotoURL:    photoURL(in.StudentID),
			RoomID:      room.RoomID,
		})
		created = Allotment{
			StudentID:     in.StudentID,
			RoomNo:        room.RoomID,
			PaymentStatus: in.PaymentStatus,
			AllottedBy:    in.AllottedBy,
			Date:          s.today(),
		}
		doc.Allotments = append(doc.Allotments, created)
		room.Occupants = append(room.Occupants, in.StudentID)

		return []Event{{
			Type:      EventAllotmentCreated,
			StudentID: in.StudentID,
			EntityID:  room.RoomID,
			Data:      created,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteStudent removes a student, their room slot and their allotment.
// Complaints, requests, invoices and fees naming the student are kept.
func (s *Store) DeleteStudent(ctx context.Context, studentID string) error {
	return s.update(ctx, func(doc *Document) ([]Event, error) {
		student := doc.student(studentID)
		if student == nil {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
		}
		roomID := student.RoomID
		if roomID != "" {
			if room := doc.room(roomID); room != nil {
				room.removeOccupant(studentID)
			}
		}

		allotments := doc.Allotments[:0]
		for _, a := range doc.Allotments {
			if a.StudentID != studentID {
				allotments = append(allotments, a)
			}
		}
		doc.Allotments = allotments

		students := doc.Students[:0]
		for _, st := range doc.Students {
			if st.AllotmentID != studentID {
				students = append(students, st)
			}
		}
		doc.Students = students

		return []Event{{
			Type:      EventStudentDeleted,
			StudentID: studentID,
			EntityID:  roomID,
		}}, nil
	})
}
