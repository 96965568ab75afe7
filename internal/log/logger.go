package log

import (
	"go.uber.org/zap"
)

// L is the process-wide logger. Init must be called once at startup;
// the zero value falls back to a no-op logger so tests that don't care
// about output keep working.
var L = zap.NewNop().Sugar()

func Init(prod bool) (*zap.Logger, error) {
	var (
		lg  *zap.Logger
		err error
	)
	if prod {
		lg, err = zap.NewProduction()
	} else {
		lg, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	L = lg.Sugar()
	return lg, nil
}

func Infof(format string, args ...any)  { L.Infof(format, args...) }
func Errorf(format string, args ...any) { L.Errorf(format, args...) }
func Warnf(format string, args ...any)  { L.Warnf(format, args...) }
