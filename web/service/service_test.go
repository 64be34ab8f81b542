package service

import (
	"path/filepath"
	"testing"

	"clubboard/database"
	"clubboard/logger"

	"github.com/op/go-logging"
)

func setup(t *testing.T) {
	t.Helper()
	t.Setenv("CLUB_LOG_FOLDER", t.TempDir())
	logger.InitLogger(logging.DEBUG)
	if err := database.InitDB(filepath.Join(t.TempDir(), "clubboard.db")); err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.CloseDB()
	})
}
