// internal/app/features/batches/students.go
package batches

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/policy/capacitypolicy"
	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/paging"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EnrollStudent handles POST /batches/{id}/students. The capacity check
// uses the authoritative count from the enrollments collection; the
// unique partial index catches double-enrollment races, and the guarded
// counter increment catches capacity races.
func (h *Handler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	batchID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req enrollRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid student_id")
		return
	}
	if _, err := h.Users.GetByRole(r.Context(), studentID, models.RoleStudent); err != nil {
		h.respondDomainError(w, err)
		return
	}

	b, err := h.Batches.GetByID(r.Context(), batchID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if b.Status == models.BatchCompleted || b.Status == models.BatchCancelled {
		respondError(w, http.StatusConflict, "cannot enroll into a "+b.Status+" batch")
		return
	}

	active, err := h.Enrollments.CountActiveByBatch(r.Context(), batchID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if err := capacitypolicy.CanEnroll(b.BatchType, b.Capacity, active); err != nil {
		h.respondDomainError(w, err)
		return
	}

	e, err := h.Enrollments.Create(r.Context(), models.Enrollment{
		BatchID:   batchID,
		CourseID:  b.CourseID,
		StudentID: studentID,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	if ok, err := h.Batches.IncEnrolled(r.Context(), batchID); err != nil || !ok {
		// Counter drift only; the reconcile task and read-side repair
		// converge it back to the authoritative count.
		h.Log.Warn("enrolled counter not incremented",
			zap.String("batch_id", batchID.Hex()), zap.Error(err))
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventStudentEnrolled, batchID, actor, map[string]string{
		"student_id":    studentID.Hex(),
		"enrollment_id": e.ID.Hex(),
	})
	respond(w, http.StatusCreated, e)
}

// RemoveStudent handles DELETE /batches/{id}/students/{studentID}. The
// enrollment record is kept with a cancelled status; it drops out of
// the active set and frees a seat.
func (h *Handler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	batchID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	studentID, ok := urlID(w, r, "studentID")
	if !ok {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	e, err := h.Enrollments.ActiveByBatchAndStudent(r.Context(), batchID, studentID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if err := h.Enrollments.UpdateStatus(r.Context(), e.ID, models.EnrollmentCancelled); err != nil {
		h.respondDomainError(w, err)
		return
	}
	if err := h.Batches.DecEnrolled(r.Context(), batchID); err != nil {
		h.Log.Warn("enrolled counter not decremented",
			zap.String("batch_id", batchID.Hex()), zap.Error(err))
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventStudentRemoved, batchID, actor, map[string]string{
		"student_id":    studentID.Hex(),
		"enrollment_id": e.ID.Hex(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// ListStudents handles GET /batches/{id}/students with an optional
// status filter.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	batchID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.Batches.GetByID(r.Context(), batchID); err != nil {
		h.respondDomainError(w, err)
		return
	}

	rows, err := h.Enrollments.ListByBatch(r.Context(), batchID, query.Get(r, "status"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	type row struct {
		models.Enrollment
		StudentName string `json:"student_name,omitempty"`
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, e := range rows {
		ids = append(ids, e.StudentID)
	}
	names, err := h.Users.NamesByIDs(r.Context(), ids)
	if err != nil {
		names = map[primitive.ObjectID]string{}
	}

	p := paging.Parse(r)
	page := paging.Slice(rows, p)
	out := make([]row, 0, len(page))
	for _, e := range page {
		out = append(out, row{Enrollment: e, StudentName: names[e.StudentID]})
	}
	respond(w, http.StatusOK, paging.Wrap(out, int64(len(rows)), p))
}
