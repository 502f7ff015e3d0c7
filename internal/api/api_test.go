package api

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/config"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/engine"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/store"
)

// setupRouter builds a full router over a fresh in-memory database.
func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Lead{}, &model.Appointment{}, &model.TransitionRule{}))

	s := store.NewGormStore(db)
	eng := engine.NewService(&config.Config{}, s, nil)
	router := NewRouter(s, eng, &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	})
	return router, db
}

func getLead(t *testing.T, db *gorm.DB, id string) model.Lead {
	t.Helper()
	var lead model.Lead
	require.NoError(t, db.First(&lead, "id = ?", id).Error)
	return lead
}
