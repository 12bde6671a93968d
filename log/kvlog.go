package log

import "github.com/crewjam/rfc5424"

// KVLogger wraps a Logger with a fixed set of structured fields that are
// attached to every Debug/Info/Warn/Error line it writes — e.g. a session's
// local_sess_id or an exchange's id, so those log lines carry their own
// context without the caller repeating it. Critical and Fatal are the
// embedded Logger's methods and do not attach the fields.
type KVLogger struct {
	*Logger
	sds []rfc5424.SDParam
}

// WithKV returns a KVLogger over l carrying sds on every line.
func WithKV(l *Logger, sds ...rfc5424.SDParam) *KVLogger {
	return &KVLogger{Logger: l, sds: sds}
}

func (kvl *KVLogger) Debug(msg string, sds ...rfc5424.SDParam) error {
	return kvl.output(defaultDepth+1, DEBUG, msg, append(kvl.sds, sds...)...)
}
func (kvl *KVLogger) Info(msg string, sds ...rfc5424.SDParam) error {
	return kvl.output(defaultDepth+1, INFO, msg, append(kvl.sds, sds...)...)
}
func (kvl *KVLogger) Warn(msg string, sds ...rfc5424.SDParam) error {
	return kvl.output(defaultDepth+1, WARN, msg, append(kvl.sds, sds...)...)
}
func (kvl *KVLogger) Error(msg string, sds ...rfc5424.SDParam) error {
	return kvl.output(defaultDepth+1, ERROR, msg, append(kvl.sds, sds...)...)
}

// With returns a new KVLogger adding sds to the fields already attached.
func (kvl *KVLogger) With(sds ...rfc5424.SDParam) *KVLogger {
	merged := append(append([]rfc5424.SDParam{}, kvl.sds...), sds...)
	return &KVLogger{Logger: kvl.Logger, sds: merged}
}
