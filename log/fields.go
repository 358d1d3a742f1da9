package log

import (
	"time"

	"go.uber.org/zap"
)

func Any(key string, value interface{}) Field    { return zap.Any(key, value) }
func String(key, value string) Field             { return zap.String(key, value) }
func Int(key string, value int) Field            { return zap.Int(key, value) }
func Int32(key string, value int32) Field        { return zap.Int32(key, value) }
func Int64(key string, value int64) Field        { return zap.Int64(key, value) }
func Uint(key string, value uint) Field          { return zap.Uint(key, value) }
func Uint32(key string, value uint32) Field      { return zap.Uint32(key, value) }
func Float64(key string, value float64) Field    { return zap.Float64(key, value) }
func Bool(key string, value bool) Field          { return zap.Bool(key, value) }
func Time(key string, value time.Time) Field     { return zap.Time(key, value) }
func Duration(key string, d time.Duration) Field { return zap.Duration(key, d) }
func ErrorField(err error) Field                 { return zap.Error(err) }
