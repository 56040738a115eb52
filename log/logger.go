package log

import "context"

// Logger is the structured logger used across clinicctl. Fields are attached
// per call; context carries the active trace span, if any.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	Fatal(ctx context.Context, msg string, err error, fields ...map[string]interface{}) // exits the process
	With(fields map[string]interface{}) Logger
}
