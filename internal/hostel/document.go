package hostel

import (
	"fmt"
	"slices"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = "1.4"

// Document is the whole persisted hostel state.
type Document struct {
	Version            string              `json:"version"`
	Students           []Student           `json:"students"`
	Rooms              []Room              `json:"rooms"`
	Notices            []Notice            `json:"notices"`
	Complaints         []Complaint         `json:"complaints"`
	Invoices           []Invoice           `json:"invoices"`
	Allotments         []Allotment         `json:"allotments"`
	RoomChangeRequests []RoomChangeRequest `json:"roomChangeRequests"`
	MonthlyFees        []MonthlyFee        `json:"monthlyFees"`
}

// NewDocument returns an empty document at the current version.
func NewDocument() *Document {
	return &Document{
		Version:            CurrentVersion,
		Students:           []Student{},
		Rooms:              []Room{},
		Notices:            []Notice{},
		Complaints:         []Complaint{},
		Invoices:           []Invoice{},
		Allotments:         []Allotment{},
		RoomChangeRequests: []RoomChangeRequest{},
		MonthlyFees:        []MonthlyFee{},
	}
}

func (d *Document) Clone() *Document {
	c := &Document{
		Version:            d.Version,
		Students:           slices.Clone(d.Students),
		Rooms:              make([]Room, len(d.Rooms)),
		Notices:            slices.Clone(d.Notices),
		Complaints:         make([]Complaint, len(d.Complaints)),
		Invoices:           slices.Clone(d.Invoices),
		Allotments:         slices.Clone(d.Allotments),
		RoomChangeRequests: slices.Clone(d.RoomChangeRequests),
		MonthlyFees:        slices.Clone(d.MonthlyFees),
	}
	for i, r := range d.Rooms {
		r.Occupants = slices.Clone(r.Occupants)
		if r.Occupants == nil {
			r.Occupants = []string{}
		}
		c.Rooms[i] = r
	}
	for i, cp := range d.Complaints {
		c.Complaints[i] = cp.clone()
	}
	return c
}

// Check reports the first broken cross-entity invariant, if any.
func (d *Document) Check() error {
	fees := make(map[[2]string]bool, len(d.MonthlyFees))
	for _, f := range d.MonthlyFees {
		key := [2]string{f.StudentID, f.Month}
		if fees[key] {
			return fmt.Errorf("duplicate fee for %s in %s", f.StudentID, f.Month)
		}
		fees[key] = true
	}

	for i := range d.Rooms {
		r := &d.Rooms[i]
		if len(r.Occupants) > r.Capacity {
			return fmt.Errorf("room %s holds %d occupants over capacity %d", r.RoomID, len(r.Occupants), r.Capacity)
		}
		seen := make(map[string]bool, len(r.Occupants))
		for _, id := range r.Occupants {
			if seen[id] {
				return fmt.Errorf("room %s lists %s twice", r.RoomID, id)
			}
			seen[id] = true
			s := d.student(id)
			if s == nil || s.RoomID != r.RoomID {
				return fmt.Errorf("room %s lists %s who is not housed there", r.RoomID, id)
			}
		}
	}

	for _, a := range d.Allotments {
		s := d.student(a.StudentID)
		if s == nil {
			return fmt.Errorf("allotment for unknown student %s", a.StudentID)
		}
		if s.RoomID != a.RoomNo {
			return fmt.Errorf("allotment of %s names room %s but student is in %s", a.StudentID, a.RoomNo, s.RoomID)
		}
	}
	return nil
}

func (d *Document) student(id string) *Student {
	for i := range d.Students {
		if d.Students[i].AllotmentID == id {
			return &d.Students[i]
		}
	}
	return nil
}

func (d *Document) room(id string) *Room {
	for i := range d.Rooms {
		if d.Rooms[i].RoomID == id {
			return &d.Rooms[i]
		}
	}
	return nil
}

func (d *Document) allotment(studentID string) *Allotment {
	for i := range d.Allotments {
		if d.Allotments[i].StudentID == studentID {
			return &d.Allotments[i]
		}
	}
	return nil
}

func (d *Document) complaint(id string) *Complaint {
	for i := range d.Complaints {
		if d.Complaints[i].ComplaintID == id {
			return &d.Complaints[i]
		}
	}
	return nil
}

func (d *Document) request(id string) *RoomChangeRequest {
	for i := range d.RoomChangeRequests {
		if d.RoomChangeRequests[i].RequestID == id {
			return &d.RoomChangeRequests[i]
		}
	}
	return nil
}

func (d *Document) fee(id string) *MonthlyFee {
	for i := range d.MonthlyFees {
		if d.MonthlyFees[i].FeeID == id {
			return &d.MonthlyFees[i]
		}
	}
	return nil
}

func (d *Document) hasFee(studentID, month string) bool {
	for _, f := range d.MonthlyFees {
		if f.StudentID == studentID && f.Month == month {
			return true
		}
	}
	return false
}

func (d *Document) invoice(id string) *Invoice {
	for i := range d.Invoices {
		if d.Invoices[i].InvoiceID == id {
			return &d.Invoices[i]
		}
	}
	return nil
}

func (d *Document) notice(id string) *Notice {
	for i := range d.Notices {
		if d.Notices[i].NoticeID == id {
			return &d.Notices[i]
		}
	}
	return nil
}
