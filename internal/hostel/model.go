package hostel

import (
	"time"
)

type SeatType int

const (
	SingleSeater SeatType = 1
	DoubleSeater SeatType = 2
	TripleSeater SeatType = 3
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentNotPaid PaymentStatus = "Not Paid"
)

type ComplaintStatus string

const (
	ComplaintNew        ComplaintStatus = "New"
	ComplaintInProgress ComplaintStatus = "In-Progress"
	ComplaintResolved   ComplaintStatus = "Resolved"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
)

type InvoiceStatus string

const (
	InvoicePaid   InvoiceStatus = "Paid"
	InvoiceUnpaid InvoiceStatus = "Unpaid"
)

type FeeStatus string

const (
	FeePaid FeeStatus = "Paid"
	FeeDue  FeeStatus = "Due"
)

// Occupancy is the public view of how full a room is.
type Occupancy string

const (
	OccupancyVacant  Occupancy = "vacant"
	OccupancyPartial Occupancy = "partial"
	OccupancyFull    Occupancy = "full"
)

type Room struct {
	RoomID    string   `json:"roomId"`
	Floor     int      `json:"floor"`
	Type      SeatType `json:"type"`
	Capacity  int      `json:"capacity"`
	Occupants []string `json:"occupants"`
}

func (r *Room) IsFull() bool {
	return len(r.Occupants) >= r.Capacity
}

func (r *Room) Occupancy() Occupancy {
	switch {
	case len(r.Occupants) == 0:
		return OccupancyVacant
	case r.IsFull():
		return OccupancyFull
	default:
		return OccupancyPartial
	}
}

func (r *Room) hasOccupant(studentID string) bool {
	for _, id := range r.Occupants {
		if id == studentID {
			return true
		}
	}
	return false
}

func (r *Room) removeOccupant(studentID string) {
	kept := r.Occupants[:0]
	for _, id := range r.Occupants {
		if id != studentID {
			kept = append(kept, id)
		}
	}
	r.Occupants = kept
}

type Student struct {
	AllotmentID string `json:"allotmentId"`
	Name        string `json:"name"`
	Dept        string `json:"dept"`
	Year        int    `json:"year"`
	PhotoURL    string `json:"photoUrl"`
	RoomID      string `json:"roomId,omitempty"`
}

type Allotment struct {
	StudentID     string        `json:"studentId"`
	RoomNo        string        `json:"roomNo"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	AllottedBy    string        `json:"allottedBy"`
	Date          time.Time     `json:"date"`
}

type Complaint struct {
	ComplaintID     string          `json:"complaintId"`
	FromAllotmentID string          `json:"fromAllotmentId"`
	RoomID          string          `json:"roomId"`
	Title           string          `json:"title"`
	Body            string          `json:"body"`
	Status          ComplaintStatus `json:"status"`
	Date            time.Time       `json:"date"`
	ResolutionDate  *time.Time      `json:"resolutionDate,omitempty"`
}

type RoomChangeRequest struct {
	RequestID   string        `json:"requestId"`
	StudentID   string        `json:"studentId"`
	StudentName string        `json:"studentName"`
	CurrentRoom string        `json:"currentRoom"`
	DesiredRoom string        `json:"desiredRoom"`
	Reason      string        `json:"reason"`
	Date        time.Time     `json:"date"`
	Status      RequestStatus `json:"status"`
}

type Invoice struct {
	InvoiceID   string        `json:"invoiceId"`
	StudentID   string        `json:"studentId"`
	StudentName string        `json:"studentName"`
	Description string        `json:"description"`
	Amount      float64       `json:"amount"`
	Status      InvoiceStatus `json:"status"`
	Date        time.Time     `json:"date"`
}

type MonthlyFee struct {
	FeeID       string    `json:"feeId"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	Month       string    `json:"month"`
	Amount      float64   `json:"amount"`
	Status      FeeStatus `json:"status"`
	Date        time.Time `json:"date"`
}

type Notice struct {
	NoticeID string    `json:"noticeId"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Date     time.Time `json:"date"`
	StampURL string    `json:"stampUrl"`
}

// AllotmentInput carries the admin form for a new allotment.
type AllotmentInput struct {
	StudentID     string
	Name          string
	Dept          string
	Year          int
	RoomID        string
	PaymentStatus PaymentStatus
	AllottedBy    string
}

// RoomDetail is a room with its occupants resolved to student records.
type RoomDetail struct {
	Room
	Status   Occupancy `json:"status"`
	Students []Student `json:"students"`
}

func validComplaintStatus(s ComplaintStatus) bool {
	switch s {
	case ComplaintNew, ComplaintInProgress, ComplaintResolved:
		return true
	}
	return false
}

func validPaymentStatus(s PaymentStatus) bool {
	return s == PaymentPaid || s == PaymentNotPaid
}

// MonthLabel formats the billing month the way fee records name it, e.g. "March 2025".
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}
