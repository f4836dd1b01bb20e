// Package traffic counts page views and unique visitors per day for the
// staff dashboard.
package traffic

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/models"
)

// Requests under these prefixes are not visits.
var skipPrefixes = []string{"/static/", "/media/", "/admin/", "/api/admin/"}

// Middleware records the visit before handing over to the next handler.
// Counting failures are logged and never fail the request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tracked(c.Request.URL.Path) {
			if err := Track(db.DB, c.ClientIP(), time.Now()); err != nil {
				slog.Warn("failed to track visit", "path", c.Request.URL.Path, "error", err)
			}
		}
		c.Next()
	}
}

func tracked(path string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// Track counts one view by ip at time at. Both counters are atomic
// increments, so concurrent requests never lose updates.
func Track(conn *gorm.DB, ip string, at time.Time) error {
	day := models.DateOf(at)

	return conn.Transaction(func(tx *gorm.DB) error {
		if err := bumpViews(tx, day); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.DailyVisitor{IPAddress: ip, Date: day})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		return tx.Model(&models.DailyStats{}).
			Where("date = ?", day).
			Update("unique_visitors", gorm.Expr("unique_visitors + 1")).Error
	})
}

func bumpViews(tx *gorm.DB, day datatypes.Date) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{"total_views": gorm.Expr("daily_stats.total_views + 1")}),
	}).Create(&models.DailyStats{Date: day, TotalViews: 1}).Error
}
