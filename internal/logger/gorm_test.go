package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func statement() (string, int64) {
	return "SELECT * FROM `workspaces`", 1
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn, 100*time.Millisecond)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), statement, nil)
	assert.Zero(t, logs.Len())

	l.Trace(ctx, time.Now(), statement, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(ctx, time.Now(), statement, errors.New("connection reset"))
	require.Equal(t, 1, logs.FilterMessage("query failed").Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "gorm", entry.LoggerName)
	assert.Equal(t, "SELECT * FROM `workspaces`", entry.ContextMap()["sql"])

	l.Trace(ctx, time.Now().Add(-time.Second), statement, nil)
	assert.Equal(t, 1, logs.FilterMessage("slow query").Len())
}

func TestGormLogger_LogMode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

	verbose := base.LogMode(gormlogger.Info)
	verbose.Trace(context.Background(), time.Now(), statement, nil)
	assert.Equal(t, 1, logs.FilterMessage("query").Len())

	silent := base.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), statement, errors.New("boom"))
	silent.Error(context.Background(), "boom")
	assert.Equal(t, 1, logs.Len())
}
