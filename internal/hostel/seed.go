package hostel

import (
	"fmt"
	"math/rand"
	"time"
)

// SeedOptions controls the sample data written on first start.
type SeedOptions struct {
	Floors          int
	RoomsPerFloor   int
	PrefilledFloors int
	// FillChance is the probability that a room on a prefilled floor starts full.
	FillChance float64
	Rand       *rand.Rand
}

func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		Floors:          19,
		RoomsPerFloor:   17,
		PrefilledFloors: 2,
		FillChance:      0.7,
	}
}

var departments = []string{"CSE", "ECE", "ME", "CE"}

// RoomID encodes floor and sequence, e.g. floor 3 room 7 is "307".
func RoomID(floor, seq int) string {
	return fmt.Sprintf("%d%02d", floor, seq)
}

// SeatTypeFor returns the seat type of the seq-th room on a floor.
func SeatTypeFor(seq int) SeatType {
	switch {
	case seq <= 4:
		return SingleSeater
	case seq <= 13:
		return DoubleSeater
	default:
		return TripleSeater
	}
}

// Seed builds a fresh sample document: the room grid, students filling part
// of the low floors, their allotments, two notices and two sample fees.
func Seed(opts SeedOptions) *Document {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	doc := NewDocument()
	allottedOn := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	counter := 1

	for f := 1; f <= opts.Floors; f++ {
		for r := 1; r <= opts.RoomsPerFloor; r++ {
			seat := SeatTypeFor(r)
			room := Room{
				RoomID:    RoomID(f, r),
				Floor:     f,
				Type:      seat,
				Capacity:  int(seat),
				Occupants: []string{},
			}

			if f <= opts.PrefilledFloors && rng.Float64() < opts.FillChance {
				for len(room.Occupants) < room.Capacity {
					id := fmt.Sprintf("STU%03d", counter)
					doc.Students = append(doc.Students, Student{
						AllotmentID: id,
						Name:        fmt.Sprintf("Student %d", counter),
						Dept:        departments[rng.Intn(len(departments))],
						Year:        rng.Intn(4) + 1,
						PhotoURL:    photoURL(id),
						RoomID:      room.RoomID,
					})
					doc.Allotments = append(doc.Allotments, Allotment{
						StudentID:     id,
						RoomNo:        room.RoomID,
						PaymentStatus: PaymentPaid,
						AllottedBy:    "Hostel Chairman",
						Date:          allottedOn,
					})
					room.Occupants = append(room.Occupants, id)
					counter++
				}
			}
			doc.Rooms = append(doc.Rooms, room)
		}
	}

	doc.Notices = append(doc.Notices,
		Notice{
			NoticeID: "N001",
			Title:    "Water Supply Disruption",
			Body:     "Water supply will be interrupted tomorrow from 10 AM to 1 PM for maintenance.",
			Date:     time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC),
			StampURL: defaultStampURL,
		},
		Notice{
			NoticeID: "N002",
			Title:    "Diwali Celebration",
			Body:     "Join us for the Diwali celebration in the common room at 7 PM.",
			Date:     time.Date(2025, time.November, 9, 0, 0, 0, 0, time.UTC),
			StampURL: defaultStampURL,
		},
	)

	billedOn := time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC)
	for i, status := range []FeeStatus{FeePaid, FeeDue} {
		if i >= len(doc.Students) {
			break
		}
		s := doc.Students[i]
		doc.MonthlyFees = append(doc.MonthlyFees, MonthlyFee{
			FeeID:       fmt.Sprintf("FEE-SEED-%d", i+1),
			StudentID:   s.AllotmentID,
			StudentName: s.Name,
			Month:       "October 2025",
			Amount:      3000,
			Status:      status,
			Date:        billedOn,
		})
	}

	return doc
}

const defaultStampURL = "assets/logo.jpeg"

func photoURL(studentID string) string {
	return "https://i.pravatar.cc/100?u=" + studentID
}
