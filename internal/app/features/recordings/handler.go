// internal/app/features/recordings/handler.go
package recordings

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	batchstore "github.com/dalemusser/learnhub/internal/app/store/batches"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/objstore"
	"github.com/dalemusser/learnhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// videoPrefix is where recordings live in the bucket. Manual uploads
// write under it and the resolver lists it.
const videoPrefix = "videos/"

// DefaultSignTTL bounds how long a playback link stays valid.
const DefaultSignTTL = 15 * time.Minute

// URLSigner issues short-lived playback URLs for storage keys. The
// waffle storage.Store satisfies it; tests inject a stub.
type URLSigner interface {
	PresignedURL(ctx context.Context, path string, opts *storage.PresignOptions) (string, error)
}

// Handler serves the correlated recording views and the sync trigger.
type Handler struct {
	Batches *batchstore.Store
	Users   *userstore.Store
	Lister  objstore.Lister
	Signer  URLSigner
	Syncer  *workers.Syncer
	SignTTL time.Duration
	Log     *zap.Logger
}

// NewHandler constructs a recordings Handler. A zero signTTL falls back
// to DefaultSignTTL.
func NewHandler(batches *batchstore.Store, users *userstore.Store, lister objstore.Lister, signer URLSigner, syncer *workers.Syncer, signTTL time.Duration, logger *zap.Logger) *Handler {
	if signTTL <= 0 {
		signTTL = DefaultSignTTL
	}
	return &Handler{
		Batches: batches,
		Users:   users,
		Lister:  lister,
		Signer:  signer,
		Syncer:  syncer,
		SignTTL: signTTL,
		Log:     logger,
	}
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

func urlID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// sign produces a playback URL for a storage key. Signing failures are
// logged and leave the URL empty rather than failing the whole view.
func (h *Handler) sign(ctx context.Context, key string) string {
	url, err := h.Signer.PresignedURL(ctx, key, &storage.PresignOptions{Expires: h.SignTTL})
	if err != nil {
		h.Log.Warn("presign failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}
