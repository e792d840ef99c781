// internal/app/features/batches/batchcrud.go
package batches

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	batchstore "github.com/dalemusser/learnhub/internal/app/store/batches"
	"github.com/dalemusser/learnhub/internal/app/system/paging"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateBatch handles POST /batches.
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.BatchType != models.BatchTypeGroup && req.BatchType != models.BatchTypeIndividual {
		respondError(w, http.StatusBadRequest, "batch_type must be group or individual")
		return
	}

	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid course_id")
		return
	}
	course, err := h.Courses.GetByID(r.Context(), courseID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	b := models.Batch{
		CourseID:  course.ID,
		Name:      req.Name,
		BatchType: req.BatchType,
		Capacity:  req.Capacity,
	}

	if req.InstructorID != "" {
		instructorID, err := primitive.ObjectIDFromHex(req.InstructorID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid instructor_id")
			return
		}
		if _, err := h.Users.GetByRole(r.Context(), instructorID, models.RoleInstructor); err != nil {
			h.respondDomainError(w, err)
			return
		}
		b.InstructorID = &instructorID
	}

	if req.StartDate != "" {
		d, err := parseDate(req.StartDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		b.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := parseDate(req.EndDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		b.EndDate = &d
	}
	if b.StartDate != nil && b.EndDate != nil && b.EndDate.Before(*b.StartDate) {
		respondError(w, http.StatusUnprocessableEntity, "end_date is before start_date")
		return
	}

	created, err := h.Batches.Create(r.Context(), b)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventBatchCreated, created.ID, actor, map[string]string{
		"name":       created.Name,
		"batch_type": created.BatchType,
	})
	respond(w, http.StatusCreated, created)
}

// GetBatch handles GET /batches/{id}.
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "batch lookup")
	defer cancel()
	b, err := h.Batches.GetByID(ctx, id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

// ListBatches handles GET /batches with course_id, instructor_id, and
// status filters plus standard pagination.
func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	f := batchstore.ListFilter{
		Status:   query.Get(r, "status"),
		Page:     p.Page,
		PageSize: p.PageSize,
	}
	if v := query.Get(r, "course_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid course_id")
			return
		}
		f.CourseID = &id
	}
	if v := query.Get(r, "instructor_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid instructor_id")
			return
		}
		f.InstructorID = &id
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "batch listing")
	defer cancel()
	items, total, err := h.Batches.List(ctx, f)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, paging.Wrap(items, total, p))
}

// UpdateCapacity handles PATCH /batches/{id}/capacity.
func (h *Handler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req capacityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := h.Batches.UpdateCapacity(r.Context(), id, req.Capacity); err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventCapacityChanged, id, actor, map[string]string{
		"capacity": strconv.Itoa(req.Capacity),
	})
	respond(w, http.StatusOK, map[string]int{"capacity": req.Capacity})
}

// AssignInstructor handles POST /batches/{id}/instructor.
func (h *Handler) AssignInstructor(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req instructorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	instructorID, err := primitive.ObjectIDFromHex(req.InstructorID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid instructor_id")
		return
	}
	if _, err := h.Users.GetByRole(r.Context(), instructorID, models.RoleInstructor); err != nil {
		h.respondDomainError(w, err)
		return
	}
	if err := h.Batches.AssignInstructor(r.Context(), id, instructorID); err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventInstructorAssigned, id, actor, map[string]string{
		"instructor_id": instructorID.Hex(),
	})
	respond(w, http.StatusOK, map[string]string{"instructor_id": instructorID.Hex()})
}
