// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/arikst/schoolhub/internal/app/resources"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	userstore "github.com/arikst/schoolhub/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// seedGrades are the grade levels every installation starts with.
var seedGrades = []string{"ז", "ח", "ט"}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It seeds
// the fixed grade levels and the bootstrap manager account.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	grades := gradestore.New(deps.MongoDatabase)
	for _, name := range seedGrades {
		if _, err := grades.EnsureByName(ctx, name); err != nil {
			return fmt.Errorf("seed grade %q: %w", name, err)
		}
	}
	logger.Info("grade levels ensured", zap.Strings("grades", seedGrades))

	if appCfg.ManagerEmail != "" {
		user, err := userstore.New(deps.MongoDatabase).
			EnsureManager(ctx, appCfg.ManagerName, appCfg.ManagerEmail, appCfg.ManagerPassword)
		if err != nil {
			return fmt.Errorf("ensure manager account: %w", err)
		}
		logger.Info("manager account ensured",
			zap.String("user_id", user.ID.Hex()),
			zap.String("email", appCfg.ManagerEmail))
	}

	return nil
}
