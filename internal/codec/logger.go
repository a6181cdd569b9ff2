package codec

import "github.com/sirupsen/logrus"

// Logger is the categorized sink every decoder logs through. *logrus.Logger
// and *logrus.Entry both satisfy it without adaptation.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// OrDefault returns l, or the standard logrus logger if l is nil. Decoders
// call this once at entry so the rest of the call tree never checks for nil.
func OrDefault(l Logger) Logger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}
