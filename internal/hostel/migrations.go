package hostel

import (
	"fmt"
	"strconv"
	"strings"
)

type migration struct {
	to    string
	apply func(Document) Document
}

// migrations maps a stored version to the step that lifts it one version up.
// Steps only add collections; nothing already stored is rewritten.
var migrations = map[string]migration{
	// Documents written before versioning carry no version at all.
	"": {to: "1.1", apply: func(d Document) Document {
		if d.Students == nil {
			d.Students = []Student{}
		}
		if d.Rooms == nil {
			d.Rooms = []Room{}
		}
		if d.Notices == nil {
			d.Notices = []Notice{}
		}
		if d.Allotments == nil {
			d.Allotments = []Allotment{}
		}
		return d
	}},
	"1.1": {to: "1.2", apply: func(d Document) Document {
		if d.Complaints == nil {
			d.Complaints = []Complaint{}
		}
		return d
	}},
	"1.2": {to: "1.3", apply: func(d Document) Document {
		if d.Invoices == nil {
			d.Invoices = []Invoice{}
		}
		if d.RoomChangeRequests == nil {
			d.RoomChangeRequests = []RoomChangeRequest{}
		}
		return d
	}},
	"1.3": {to: "1.4", apply: func(d Document) Document {
		if d.MonthlyFees == nil {
			d.MonthlyFees = []MonthlyFee{}
		}
		return d
	}},
}

// backfill gives every missing collection an empty value. Older versions
// without their own step go straight to CurrentVersion through it.
func backfill(d Document) Document {
	fresh := NewDocument()
	if d.Students == nil {
		d.Students = fresh.Students
	}
	if d.Rooms == nil {
		d.Rooms = fresh.Rooms
	}
	if d.Notices == nil {
		d.Notices = fresh.Notices
	}
	if d.Complaints == nil {
		d.Complaints = fresh.Complaints
	}
	if d.Invoices == nil {
		d.Invoices = fresh.Invoices
	}
	if d.Allotments == nil {
		d.Allotments = fresh.Allotments
	}
	if d.RoomChangeRequests == nil {
		d.RoomChangeRequests = fresh.RoomChangeRequests
	}
	if d.MonthlyFees == nil {
		d.MonthlyFees = fresh.MonthlyFees
	}
	return d
}

// Migrate lifts doc to CurrentVersion. The boolean reports whether any step ran.
// Only versions newer than CurrentVersion, or not numeric, are refused.
func Migrate(doc Document) (Document, bool, error) {
	migrated := false
	for doc.Version != CurrentVersion {
		cmp, err := compareVersions(doc.Version, CurrentVersion)
		if err != nil || cmp > 0 {
			return doc, migrated, fmt.Errorf("%w: %q", ErrUnsupportedVersion, doc.Version)
		}

		step, ok := migrations[doc.Version]
		if !ok {
			step = migration{to: CurrentVersion, apply: backfill}
		}
		doc = step.apply(doc)
		doc.Version = step.to
		migrated = true
	}
	return doc, migrated, nil
}

// compareVersions orders dotted numeric versions; "1.3" equals "1.3.0".
// The empty version predates every numbered one.
func compareVersions(a, b string) (int, error) {
	pa, err := parseVersion(a)
	if err != nil {
		return 0, err
	}
	pb, err := parseVersion(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if x != y {
			if x < y {
				return -1, nil
			}
			return 1, nil
		}
	}
	return 0, nil
}

func parseVersion(v string) ([]int, error) {
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version %q", v)
		}
		out[i] = n
	}
	return out, nil
}
