// internal/app/features/batches/handler.go
package batches

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/policy/capacitypolicy"
	batchstore "github.com/dalemusser/learnhub/internal/app/store/batches"
	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	enrollmentstore "github.com/dalemusser/learnhub/internal/app/store/enrollments"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/batchstatus"
	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/meetings"
	"github.com/dalemusser/learnhub/internal/app/system/schedule"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler owns the batch administration endpoints: batch CRUD, session
// scheduling, status transitions, enrollment, and recorded lessons.
//
// It is constructed once at startup in bootstrap, using the shared
// stores, file storage, meeting manager, and logger.
type Handler struct {
	Batches     *batchstore.Store
	Enrollments *enrollmentstore.Store
	Courses     *coursestore.Store
	Users       *userstore.Store
	Storage     storage.Store
	Meetings    *meetings.Manager
	Audit       *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler constructs a batch Handler bound to the given stores and
// services.
func NewHandler(batches *batchstore.Store, enrollments *enrollmentstore.Store, courses *coursestore.Store, users *userstore.Store, store storage.Store, meet *meetings.Manager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Batches:     batches,
		Enrollments: enrollments,
		Courses:     courses,
		Users:       users,
		Storage:     store,
		Meetings:    meet,
		Audit:       audit,
		Log:         logger,
	}
}

/* ------------------------------ JSON helpers ------------------------------ */

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a size-limited JSON body into dst. On failure it has
// already written the 400 response.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// urlID parses the named chi URL parameter as an ObjectID. On failure
// it has already written the 400 response.
func urlID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// actorID returns the signed-in user's id. The auth middleware runs
// before every handler, so a missing or malformed id is a 500, not 401.
func actorID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respondError(w, http.StatusInternalServerError, "no signed-in user")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "malformed user id in session")
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondDomainError maps store and policy errors onto HTTP statuses.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, batchstore.ErrBatchNotFound),
		errors.Is(err, batchstore.ErrSessionNotFound),
		errors.Is(err, coursestore.ErrCourseNotFound),
		errors.Is(err, userstore.ErrUserNotFound),
		errors.Is(err, enrollmentstore.ErrEnrollmentNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, schedule.ErrConflict),
		errors.Is(err, batchstatus.ErrInvalidTransition),
		errors.Is(err, capacitypolicy.ErrCapacityExceeded),
		errors.Is(err, enrollmentstore.ErrAlreadyEnrolled),
		errors.Is(err, batchstore.ErrDuplicateBatchName):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, schedule.ErrMissingDateRange),
		errors.Is(err, schedule.ErrOutOfRange),
		errors.Is(err, schedule.ErrInvalidInterval),
		errors.Is(err, batchstatus.ErrActivationPrecondition),
		errors.Is(err, capacitypolicy.ErrCapacityBelowOccupancy),
		errors.Is(err, capacitypolicy.ErrInvalidCapacity):
		respondError(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, batchstatus.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, err.Error())

	default:
		h.Log.Error("batch handler error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
