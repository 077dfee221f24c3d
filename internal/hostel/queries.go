package hostel

import (
	"fmt"
	"slices"
)

func (s *Store) Rooms() []Room {
	var rooms []Room
	s.read(func(doc *Document) { rooms = doc.Clone().Rooms })
	return rooms
}

func (s *Store) RoomsOnFloor(floor int) []Room {
	var rooms []Room
	s.read(func(doc *Document) {
		for _, r := range doc.Rooms {
			if r.Floor == floor {
				r.Occupants = slices.Clone(r.Occupants)
				rooms = append(rooms, r)
			}
		}
	})
	return rooms
}

// RoomDetail resolves a room's occupants to their student records.
func (s *Store) RoomDetail(roomID string) (*RoomDetail, error) {
	var detail *RoomDetail
	s.read(func(doc *Document) {
		r := doc.room(roomID)
		if r == nil {
			return
		}
		detail = &RoomDetail{Room: *r, Status: r.Occupancy(), Students: []Student{}}
		detail.Occupants = slices.Clone(r.Occupants)
		for _, id := range r.Occupants {
			if st := doc.student(id); st != nil {
				detail.Students = append(detail.Students, *st)
			}
		}
	})
	if detail == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return detail, nil
}

func (s *Store) Students() []Student {
	var out []Student
	s.read(func(doc *Document) { out = slices.Clone(doc.Students) })
	return out
}

func (s *Store) Student(studentID string) (*Student, error) {
	var out *Student
	s.read(func(doc *Document) {
		if st := doc.student(studentID); st != nil {
			c := *st
			out = &c
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
	}
	return out, nil
}

// AuthenticateStudent matches an allotment id against the room the student lives in.
func (s *Store) AuthenticateStudent(allotmentID, roomNo string) (*Student, error) {
	st, err := s.Student(allotmentID)
	if err != nil || st.RoomID == "" || st.RoomID != roomNo {
		return nil, ErrInvalidCredentials
	}
	return st, nil
}

func (s *Store) Allotments() []Allotment {
	var out []Allotment
	s.read(func(doc *Document) { out = slices.Clone(doc.Allotments) })
	return out
}

func (s *Store) Allotment(studentID string) (*Allotment, error) {
	var out *Allotment
	s.read(func(doc *Document) {
		if a := doc.allotment(studentID); a != nil {
			c := *a
			out = &c
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
	}
	return out, nil
}

func (s *Store) Complaints() []Complaint {
	return s.complaintsWhere(func(Complaint) bool { return true })
}

func (s *Store) ComplaintsByStudent(studentID string) []Complaint {
	return s.complaintsWhere(func(c Complaint) bool { return c.FromAllotmentID == studentID })
}

func (s *Store) complaintsWhere(keep func(Complaint) bool) []Complaint {
	out := []Complaint{}
	s.read(func(doc *Document) {
		for _, c := range doc.Complaints {
			if keep(c) {
				out = append(out, c.clone())
			}
		}
	})
	return out
}

func (s *Store) Complaint(complaintID string) (*Complaint, error) {
	var out *Complaint
	s.read(func(doc *Document) {
		if c := doc.complaint(complaintID); c != nil {
			cc := c.clone()
			out = &cc
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrComplaintNotFound, complaintID)
	}
	return out, nil
}

// StudentComplaint shows a student one of their own complaints once it is resolved.
func (s *Store) StudentComplaint(studentID, complaintID string) (*Complaint, error) {
	c, err := s.Complaint(complaintID)
	if err != nil {
		return nil, err
	}
	if c.FromAllotmentID != studentID || c.Status != ComplaintResolved {
		return nil, fmt.Errorf("%w: %s", ErrComplaintNotFound, complaintID)
	}
	return c, nil
}

func (s *Store) RoomChangeRequests() []RoomChangeRequest {
	var out []RoomChangeRequest
	s.read(func(doc *Document) { out = slices.Clone(doc.RoomChangeRequests) })
	return out
}

func (s *Store) RoomChangeRequestsByStudent(studentID string) []RoomChangeRequest {
	return filter(s.RoomChangeRequests(), func(r RoomChangeRequest) bool { return r.StudentID == studentID })
}

func (s *Store) RoomChangeRequest(requestID string) (*RoomChangeRequest, error) {
	var out *RoomChangeRequest
	s.read(func(doc *Document) {
		if r := doc.request(requestID); r != nil {
			c := *r
			out = &c
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	return out, nil
}

// StudentRoomChangeRequest shows a student one of their own requests once it is approved.
func (s *Store) StudentRoomChangeRequest(studentID, requestID string) (*RoomChangeRequest, error) {
	r, err := s.RoomChangeRequest(requestID)
	if err != nil {
		return nil, err
	}
	if r.StudentID != studentID || r.Status != RequestApproved {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	return r, nil
}

func (s *Store) Invoices() []Invoice {
	var out []Invoice
	s.read(func(doc *Document) { out = slices.Clone(doc.Invoices) })
	return out
}

func (s *Store) InvoicesByStudent(studentID string) []Invoice {
	return filter(s.Invoices(), func(i Invoice) bool { return i.StudentID == studentID })
}

func (s *Store) Invoice(invoiceID string) (*Invoice, error) {
	var out *Invoice
	s.read(func(doc *Document) {
		if i := doc.invoice(invoiceID); i != nil {
			c := *i
			out = &c
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, invoiceID)
	}
	return out, nil
}

func (s *Store) MonthlyFees() []MonthlyFee {
	var out []MonthlyFee
	s.read(func(doc *Document) { out = slices.Clone(doc.MonthlyFees) })
	return out
}

func (s *Store) MonthlyFeesByStudent(studentID string) []MonthlyFee {
	return filter(s.MonthlyFees(), func(f MonthlyFee) bool { return f.StudentID == studentID })
}

func (s *Store) MonthlyFee(feeID string) (*MonthlyFee, error) {
	var out *MonthlyFee
	s.read(func(doc *Document) {
		if f := doc.fee(feeID); f != nil {
			c := *f
			out = &c
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrFeeNotFound, feeID)
	}
	return out, nil
}

func (s *Store) Notices() []Notice {
	var out []Notice
	s.read(func(doc *Document) { out = slices.Clone(doc.Notices) })
	return out
}

func (s *Store) Notice(noticeID string) (*Notice, error) {
	var out *Notice
	s.read(func(doc *Document) {
		if n := doc.notice(noticeID); n != nil {
			c := *n
			out = &c
		}
	})
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoticeNotFound, noticeID)
	}
	return out, nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := []T{}
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Stats summarises bed usage and open work across the hostel.
type Stats struct {
	Rooms              int
	Beds               int
	OccupiedBeds       int
	Students           int
	OpenComplaints     int
	PendingRoomChanges int
}

func (s *Store) Stats() Stats {
	var st Stats
	s.read(func(doc *Document) {
		st.Rooms = len(doc.Rooms)
		for _, r := range doc.Rooms {
			st.Beds += r.Capacity
			st.OccupiedBeds += len(r.Occupants)
		}
		st.Students = len(doc.Students)
		for _, c := range doc.Complaints {
			if c.Status != ComplaintResolved {
				st.OpenComplaints++
			}
		}
		for _, r := range doc.RoomChangeRequests {
			if r.Status == RequestPending {
				st.PendingRoomChanges++
			}
		}
	})
	return st
}
