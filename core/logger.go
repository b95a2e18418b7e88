package core

// Logger logs to stdout and to an error tracker.
// expected args: error | map[string]interface{} | any value printable with %+v
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
