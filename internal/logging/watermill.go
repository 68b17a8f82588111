package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// WatermillAdapter routes watermill's logs through logrus.
type WatermillAdapter struct {
	entry *logrus.Entry
}

func NewWatermill(entry *logrus.Entry) *WatermillAdapter {
	return &WatermillAdapter{entry: entry}
}

func (w *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	w.entry.WithError(err).WithFields(logrus.Fields(fields)).Error(msg)
}

func (w *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	w.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

// Debug is demoted to trace: watermill is chatty at debug.
func (w *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	w.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (w *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	w.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (w *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{entry: w.entry.WithFields(logrus.Fields(fields))}
}
