package database

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func query() (string, int64) { return "SELECT 1", 1 }

func TestGormLoggerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(zerolog.New(&buf), logger.Warn)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), query, nil)
	if buf.Len() != 0 {
		t.Fatalf("fast successful query must not be logged at warn level: %s", buf.String())
	}

	l.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("record not found must not be logged: %s", buf.String())
	}

	l.Trace(ctx, time.Now(), query, errors.New("disk I/O error"))
	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "disk I/O error") || !strings.Contains(out, `"component":"gorm"`) {
		t.Fatalf("expected a structured error line, got %s", out)
	}

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	if !strings.Contains(buf.String(), "slow query") {
		t.Fatalf("expected slow query warning, got %s", buf.String())
	}
}

func TestGormLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	base := newGormLogger(zerolog.New(&buf), logger.Warn)
	ctx := context.Background()

	base.LogMode(logger.Silent).Error(ctx, "boom %d", 1)
	base.LogMode(logger.Silent).Trace(ctx, time.Now(), query, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("silent logger wrote: %s", buf.String())
	}

	base.Info(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info must be hidden at warn level: %s", buf.String())
	}

	base.LogMode(logger.Info).Trace(ctx, time.Now(), query, nil)
	if !strings.Contains(buf.String(), "SELECT 1") {
		t.Fatalf("expected query at info level, got %s", buf.String())
	}
}
