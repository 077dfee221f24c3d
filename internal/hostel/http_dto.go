package hostel

type AllotmentRequest struct {
	StudentID     string        `json:"studentId" validate:"required,max=32"`
	Name          string        `json:"name" validate:"required,max=120"`
	Dept          string        `json:"dept" validate:"required,max=16"`
	Year          int           `json:"year" validate:"required,min=1,max=6"`
	RoomID        string        `json:"roomId" validate:"required"`
	PaymentStatus PaymentStatus `json:"paymentStatus" validate:"required"`
	AllottedBy    string        `json:"allottedBy"`
}

type ComplaintRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required"`
}

type ComplaintStatusRequest struct {
	Status ComplaintStatus `json:"status" validate:"required"`
}

type RoomChangeRequestBody struct {
	DesiredRoom string `json:"desiredRoom" validate:"required"`
	Reason      string `json:"reason" validate:"max=500"`
}

// GenerateFeesRequest bills every allotted student. An empty month means
// the current one.
type GenerateFeesRequest struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

type NoticeRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body"`
}

type ProfileResponse struct {
	Student   Student     `json:"student"`
	Allotment *Allotment  `json:"allotment,omitempty"`
	Room      *RoomDetail `json:"room,omitempty"`
}

type FeesResponse struct {
	MonthlyFees []MonthlyFee `json:"monthlyFees"`
	Invoices    []Invoice    `json:"invoices"`
}

type GenerateFeesResponse struct {
	Month   string       `json:"month"`
	Created []MonthlyFee `json:"created"`
}
