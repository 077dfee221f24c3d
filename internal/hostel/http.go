package hostel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SHADOW0715/Hostel-Management-System/internal/auth"
	"github.com/SHADOW0715/Hostel-Management-System/internal/httputil"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// LedgerWriter renders fees and invoices as a spreadsheet.
type LedgerWriter interface {
	WriteLedger(w io.Writer, fees []MonthlyFee, invoices []Invoice) error
}

type Handler struct {
	store    *Store
	ledger   LedgerWriter
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(store *Store, ledger LedgerWriter, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		store:    store,
		ledger:   ledger,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

// RegisterPublicRoutes mounts the read-only views shown before login.
func (h *Handler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/rooms", h.ListRooms)
	router.Get("/rooms/{roomID}", h.GetRoom)
	router.Get("/notices", h.ListNotices)
	router.Get("/notices/{noticeID}", h.GetNotice)
}

// RegisterAdminRoutes expects the router to be guarded by an admin role check.
func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/rooms", h.ListRooms)
	router.Get("/rooms/{roomID}", h.GetRoom)

	router.Get("/students", h.ListStudents)
	router.Delete("/students/{studentID}", h.DeleteStudent)

	router.Get("/allotments", h.ListAllotments)
	router.Post("/allotments", h.CreateAllotment)
	router.Get("/allotments/{studentID}", h.GetAllotment)

	router.Get("/complaints", h.ListComplaints)
	router.Get("/complaints/{complaintID}", h.GetComplaint)
	router.Put("/complaints/{complaintID}/status", h.UpdateComplaintStatus)

	router.Get("/room-change-requests", h.ListRoomChangeRequests)
	router.Get("/room-change-requests/{requestID}", h.GetRoomChange)
	router.Post("/room-change-requests/{requestID}/approve", h.ApproveRoomChange)
	router.Post("/room-change-requests/{requestID}/reject", h.RejectRoomChange)
	router.Delete("/room-change-requests/{requestID}", h.DeleteRoomChange)

	router.Get("/invoices", h.ListInvoices)
	router.Get("/invoices/{invoiceID}", h.GetInvoice)

	router.Get("/fees", h.ListFees)
	router.Post("/fees/generate", h.GenerateFees)
	router.Post("/fees/{feeID}/toggle", h.ToggleFee)
	router.Get("/fees/export", h.ExportLedger)
	router.Get("/fees/{feeID}", h.GetFee)

	router.Get("/notices", h.ListNotices)
	router.Get("/notices/{noticeID}", h.GetNotice)
	router.Post("/notices", h.CreateNotice)
	router.Delete("/notices/{noticeID}", h.DeleteNotice)
}

// RegisterStudentRoutes expects the router to be guarded by a student role check.
func (h *Handler) RegisterStudentRoutes(router chi.Router) {
	router.Get("/me", h.Me)
	router.Get("/complaints", h.MyComplaints)
	router.Get("/complaints/{complaintID}", h.MyComplaint)
	router.Post("/complaints", h.SubmitComplaint)
	router.Get("/room-change-requests", h.MyRoomChangeRequests)
	router.Get("/room-change-requests/{requestID}", h.MyRoomChange)
	router.Post("/room-change-requests", h.SubmitRoomChange)
	router.Get("/fees", h.MyFees)
	router.Get("/fees/{feeID}", h.MyFee)
	router.Get("/invoices/{invoiceID}", h.MyInvoice)
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	if f := r.URL.Query().Get("floor"); f != "" {
		floor, err := strconv.Atoi(f)
		if err != nil || floor < 1 {
			httputil.RespondWithError(w, http.StatusBadRequest, "invalid floor")
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, nonNil(h.store.RoomsOnFloor(floor)))
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, h.store.Rooms())
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	detail, err := h.store.RoomDetail(chi.URLParam(r, "roomID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *Handler) ListNotices(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, h.store.Notices())
}

func (h *Handler) GetNotice(w http.ResponseWriter, r *http.Request) {
	notice, err := h.store.Notice(chi.URLParam(r, "noticeID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, notice)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, h.store.Students())
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	h.logger.InfoContext(r.Context(), "deleting student", "student_id", studentID)
	if err := h.store.DeleteStudent(r.Context(), studentID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentDeleted(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAllotments(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, h.store.Allotments())
}

func (h *Handler) GetAllotment(w http.ResponseWriter, r *http.Request) {
	allotment, err := h.store.Allotment(chi.URLParam(r, "studentID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, allotment)
}

func (h *Handler) CreateAllotment(w http.ResponseWriter, r *http.Request) {
	var req AllotmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.AllottedBy == "" {
		req.AllottedBy, _ = auth.SubjectFrom(r.Context())
	}

	h.logger.InfoContext(r.Context(), "creating allotment", "student_id", req.StudentID, "room_id", req.RoomID)
	allotment, err := h.store.CreateAllotment(r.Context(), AllotmentInput{
		StudentID:     req.StudentID,
		Name:          req.Name,
		Dept:          req.Dept,
		Year:          req.Year,
		RoomID:        req.RoomID,
		PaymentStatus: req.PaymentStatus,
		AllottedBy:    req.AllottedBy,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordAllotmentCreated(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, allotment)
}

func (h *Handler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, h.store.Complaints())
}

func (h *Handler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	complaint, err := h.store.Complaint(chi.URLParam(r, "complaintID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, complaint)
}

func (h *Handler) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	var req ComplaintStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	complaint, err := h.store.UpdateComplaintStatus(r.Context(), chi.URLParam(r, "complaintID"), req.Status)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, complaint)
}

func (h *Handler) ListRoomChangeRequests(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, nonNil(h.store.RoomChangeRequests()))
}

func (h *Handler) GetRoomChange(w http.ResponseWriter, r *http.Request) {
	request, err := h.store.RoomChangeRequest(chi.URLParam(r, "requestID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, request)
}

func (h *Handler) ApproveRoomChange(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	invoice, err := h.store.ApproveRoomChangeRequest(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, ErrRoomFull) {
			h.metrics.RecordRoomChange(r.Context(), "rejected")
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "room change approved", "change_request_id", requestID, "invoice_id", invoice.InvoiceID)
	h.metrics.RecordRoomChange(r.Context(), "approved")
	httputil.RespondWithJSON(w, http.StatusOK, invoice)
}

func (h *Handler) RejectRoomChange(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RejectRoomChangeRequest(r.Context(), chi.URLParam(r, "requestID")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.metrics.RecordRoomChange(r.Context(), "rejected")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteRoomChange(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteRoomChangeRequest(r.Context(), chi.URLParam(r, "requestID")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.metrics.RecordRoomChange(r.Context(), "deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, nonNil(h.store.Invoices()))
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.store.Invoice(chi.URLParam(r, "invoiceID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, invoice)
}

func (h *Handler) ListFees(w http.ResponseWriter, r *http.Request) {
	if month := r.URL.Query().Get("month"); month != "" {
		httputil.RespondWithJSON(w, http.StatusOK, filter(h.store.MonthlyFees(), func(f MonthlyFee) bool {
			return f.Month == month
		}))
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, nonNil(h.store.MonthlyFees()))
}

func (h *Handler) GenerateFees(w http.ResponseWriter, r *http.Request) {
	var req GenerateFeesRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Month == "" {
		req.Month = h.store.CurrentMonth()
	}

	created, err := h.store.GenerateMonthlyFees(r.Context(), req.Month, req.Amount)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "monthly fees generated", "month", req.Month, "count", len(created))
	h.metrics.RecordFeesGenerated(r.Context(), len(created))
	httputil.RespondWithJSON(w, http.StatusOK, GenerateFeesResponse{Month: req.Month, Created: nonNil(created)})
}

func (h *Handler) GetFee(w http.ResponseWriter, r *http.Request) {
	fee, err := h.store.MonthlyFee(chi.URLParam(r, "feeID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, fee)
}

func (h *Handler) ToggleFee(w http.ResponseWriter, r *http.Request) {
	fee, err := h.store.ToggleFeeStatus(r.Context(), chi.URLParam(r, "feeID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, fee)
}

func (h *Handler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		httputil.RespondWithError(w, http.StatusNotImplemented, "export not available")
		return
	}

	// Buffered so a failed render can still answer with an error status.
	var buf bytes.Buffer
	if err := h.ledger.WriteLedger(&buf, h.store.MonthlyFees(), h.store.Invoices()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to export ledger", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to export ledger")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="hostel-ledger.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to send ledger", "error", err)
	}
}

func (h *Handler) CreateNotice(w http.ResponseWriter, r *http.Request) {
	var req NoticeRequest
	if !h.decode(w, r, &req) {
		return
	}

	notice, err := h.store.CreateNotice(r.Context(), req.Title, req.Body)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordNoticePublished(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, notice)
}

func (h *Handler) DeleteNotice(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteNotice(r.Context(), chi.URLParam(r, "noticeID")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}

	student, err := h.store.Student(studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	resp := ProfileResponse{Student: *student}
	if a, err := h.store.Allotment(studentID); err == nil {
		resp.Allotment = a
	}
	if student.RoomID != "" {
		if room, err := h.store.RoomDetail(student.RoomID); err == nil {
			resp.Room = room
		}
	}
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) MyComplaints(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, h.store.ComplaintsByStudent(studentID))
}

func (h *Handler) MyComplaint(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}
	complaint, err := h.store.StudentComplaint(studentID, chi.URLParam(r, "complaintID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, complaint)
}

func (h *Handler) SubmitComplaint(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}
	var req ComplaintRequest
	if !h.decode(w, r, &req) {
		return
	}

	complaint, err := h.store.SubmitComplaint(r.Context(), studentID, req.Title, req.Body)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordComplaintSubmitted(r.Context())
	httputil.RespondWithJSON(w, http.StatusCreated, complaint)
}

func (h *Handler) MyRoomChangeRequests(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, h.store.RoomChangeRequestsByStudent(studentID))
}

func (h *Handler) MyRoomChange(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}
	request, err := h.store.StudentRoomChangeRequest(studentID, chi.URLParam(r, "requestID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, request)
}

func (h *Handler) SubmitRoomChange(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}
	var req RoomChangeRequestBody
	if !h.decode(w, r, &req) {
		return
	}

	request, err := h.store.SubmitRoomChangeRequest(r.Context(), studentID, req.DesiredRoom, req.Reason)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordRoomChange(r.Context(), "submitted")
	httputil.RespondWithJSON(w, http.StatusCreated, request)
}

func (h *Handler) MyFees(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, FeesResponse{
		MonthlyFees: h.store.MonthlyFeesByStudent(studentID),
		Invoices:    h.store.InvoicesByStudent(studentID),
	})
}

func (h *Handler) MyFee(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}
	feeID := chi.URLParam(r, "feeID")
	fee, err := h.store.MonthlyFee(feeID)
	if err == nil && fee.StudentID != studentID {
		err = fmt.Errorf("%w: %s", ErrFeeNotFound, feeID)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, fee)
}

func (h *Handler) MyInvoice(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.studentID(w, r)
	if !ok {
		return
	}
	invoiceID := chi.URLParam(r, "invoiceID")
	invoice, err := h.store.Invoice(invoiceID)
	if err == nil && invoice.StudentID != studentID {
		err = fmt.Errorf("%w: %s", ErrInvoiceNotFound, invoiceID)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, invoice)
}

func (h *Handler) studentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.SubjectFrom(r.Context())
	if !ok || id == "" {
		h.logger.WarnContext(r.Context(), "student id not found in context")
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound),
		errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrComplaintNotFound),
		errors.Is(err, ErrRequestNotFound),
		errors.Is(err, ErrFeeNotFound),
		errors.Is(err, ErrInvoiceNotFound),
		errors.Is(err, ErrNoticeNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateStudent),
		errors.Is(err, ErrRoomFull),
		errors.Is(err, ErrRequestClosed),
		errors.Is(err, ErrSameRoom):
		h.logger.InfoContext(r.Context(), "request conflicts with hostel state", "error", err)
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// StudentLogin adapts the store to the student login handler.
type StudentLogin struct {
	Store *Store
}

func (l StudentLogin) AuthenticateStudent(_ context.Context, allotmentID, roomNo string) (auth.Principal, error) {
	st, err := l.Store.AuthenticateStudent(allotmentID, roomNo)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return auth.Principal{}, auth.ErrInvalidCredentials
		}
		return auth.Principal{}, err
	}
	return auth.Principal{Subject: st.AllotmentID, Name: st.Name, Profile: st}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
