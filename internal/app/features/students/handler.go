// internal/app/features/students/handler.go
package students

import (
	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	"github.com/arikst/schoolhub/internal/app/system/auditlog"
	"github.com/arikst/schoolhub/internal/app/system/imagestore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the students feature.
// Listing, profile, and the manager-only mutation handlers all share the
// same database, audit logger, and image store.
type Handler struct {
	DB     *mongo.Database
	ErrLog *uierrors.ErrorLogger
	Audit  *auditlog.Logger
	Images *imagestore.Store
	Log    *zap.Logger
}

// NewHandler constructs a students Handler. Audit and Images may be nil in
// tests; a nil audit logger is a no-op and a nil image store disables
// uploads.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, images *imagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		ErrLog: errLog,
		Audit:  audit,
		Images: images,
		Log:    logger,
	}
}
