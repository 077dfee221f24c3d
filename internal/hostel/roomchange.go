package hostel

import (
	"context"
	"fmt"
	"strings"
)

const roomChangeFeeDescription = "Room Change Fee"

// SubmitRoomChangeRequest records a pending move. The desired room is only
// checked for existence when the request is approved.
func (s *Store) SubmitRoomChangeRequest(ctx context.Context, studentID, desiredRoom, reason string) (*RoomChangeRequest, error) {
	desiredRoom = strings.TrimSpace(desiredRoom)
	if desiredRoom == "" {
		return nil, ErrInvalidInput
	}

	var created RoomChangeRequest
	err := s.update(ctx, func(doc *Document) ([]Event, error) {
		student := doc.student(studentID)
		if student == nil {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
		}
		if student.RoomID == desiredRoom {
			return nil, fmt.Errorf("%w: %s", ErrSameRoom, desiredRoom)
		}
		created = RoomChangeRequest{
			RequestID:   s.newID("RC"),
			StudentID:   studentID,
			StudentName: student.Name,
			CurrentRoom: student.RoomID,
			DesiredRoom: desiredRoom,
			Reason:      reason,
			Date:        s.today(),
			Status:      RequestPending,
		}
		doc.RoomChangeRequests = append(doc.RoomChangeRequests, created)

		return []Event{{
			Type:      EventRoomChangeSubmitted,
			StudentID: studentID,
			EntityID:  created.RequestID,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ApproveRoomChangeRequest moves the student and bills the room change fee.
//
// If the desired room is full the request is rejected for good and
// ErrRoomFull is returned; no invoice is raised. A missing desired room or
// student leaves the request pending.
func (s *Store) ApproveRoomChangeRequest(ctx context.Context, requestID string) (*Invoice, error) {
	var invoice Invoice
	err := s.update(ctx, func(doc *Document) ([]Event, error) {
		req := doc.request(requestID)
		if req == nil {
			return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
		}
		if req.Status != RequestPending {
			return nil, fmt.Errorf("%w: %s is %s", ErrRequestClosed, requestID, req.Status)
		}
		newRoom := doc.room(req.DesiredRoom)
		if newRoom == nil {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, req.DesiredRoom)
		}
		student := doc.student(req.StudentID)
		if student == nil {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, req.StudentID)
		}
		if student.RoomID == newRoom.RoomID {
			return nil, fmt.Errorf("%w: %s", ErrSameRoom, newRoom.RoomID)
		}
		if newRoom.IsFull() {
			req.Status = RequestRejected
			return []Event{{
				Type:      EventRoomChangeRejected,
				StudentID: req.StudentID,
				EntityID:  req.RequestID,
				Data:      map[string]string{"reason": "desired room is full"},
			}}, commitAndFail(fmt.Errorf("%w: %s", ErrRoomFull, req.DesiredRoom))
		}

		// The student's live room wins over the room recorded on the request,
		// so an occupant slot is never left behind.
		if oldRoom := doc.room(student.RoomID); oldRoom != nil {
			oldRoom.removeOccupant(student.AllotmentID)
		}
		newRoom.Occupants = append(newRoom.Occupants, student.AllotmentID)
		student.RoomID = newRoom.RoomID
		if a := doc.allotment(student.AllotmentID); a != nil {
			a.RoomNo = newRoom.RoomID
		}
		req.Status = RequestApproved

		invoice = Invoice{
			InvoiceID:   s.newID("INV"),
			StudentID:   student.AllotmentID,
			StudentName: student.Name,
			Description: roomChangeFeeDescription,
			Amount:      s.roomChangeFee,
			Status:      InvoiceUnpaid,
			Date:        s.today(),
		}
		doc.Invoices = append(doc.Invoices, invoice)

		return []Event{{
			Type:      EventRoomChangeApproved,
			StudentID: student.AllotmentID,
			EntityID:  req.RequestID,
			Data: map[string]string{
				"fromRoom":  req.CurrentRoom,
				"toRoom":    newRoom.RoomID,
				"invoiceId": invoice.InvoiceID,
			},
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Store) RejectRoomChangeRequest(ctx context.Context, requestID string) error {
	return s.update(ctx, func(doc *Document) ([]Event, error) {
		req := doc.request(requestID)
		if req == nil {
			return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
		}
		if req.Status != RequestPending {
			return nil, fmt.Errorf("%w: %s is %s", ErrRequestClosed, requestID, req.Status)
		}
		req.Status = RequestRejected

		return []Event{{
			Type:      EventRoomChangeRejected,
			StudentID: req.StudentID,
			EntityID:  req.RequestID,
		}}, nil
	})
}

// DeleteRoomChangeRequest drops the request whatever its status.
func (s *Store) DeleteRoomChangeRequest(ctx context.Context, requestID string) error {
	return s.update(ctx, func(doc *Document) ([]Event, error) {
		req := doc.request(requestID)
		if req == nil {
			return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
		}
		studentID := req.StudentID

		kept := doc.RoomChangeRequests[:0]
		for _, r := range doc.RoomChangeRequests {
			if r.RequestID != requestID {
				kept = append(kept, r)
			}
		}
		doc.RoomChangeRequests = kept

		return []Event{{
			Type:      EventRoomChangeDeleted,
			StudentID: studentID,
			EntityID:  requestID,
		}}, nil
	})
}
