package retry

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jzx17/httpretry/pkg/types"
)

// LogrusObserver reports retry events as warnings on a logrus logger
func LogrusObserver(logger logrus.FieldLogger) types.Observer {
	return types.ObserverFunc(func(msg string, fields types.Fields) {
		logger.WithFields(logrus.Fields(fields)).Warn(msg)
	})
}

// SlogObserver reports retry events as warnings on a slog logger
func SlogObserver(logger *slog.Logger) types.Observer {
	return types.ObserverFunc(func(msg string, fields types.Fields) {
		attrs := make([]slog.Attr, 0, len(fields))
		for _, k := range slices.Sorted(maps.Keys(fields)) {
			attrs = append(attrs, slog.Any(k, fields[k]))
		}
		logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
	})
}
