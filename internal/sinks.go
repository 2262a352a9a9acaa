package internal

// ErrorSink is the minimal shape config.ErrorLog exposes to pipeline
// components, so packages below config can log without importing it
// directly (mirrors the teacher's telegraf.Logger seam).
type ErrorSink interface {
	Push(format string, args ...interface{})
}
