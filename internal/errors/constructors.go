package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *PacpanError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *PacpanError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration could not be parsed").
		WithContext("path", path)
}

func ConfigRequired(field string) *PacpanError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func EntryNotFound(path string) *PacpanError {
	return New(CategoryConfig, SeverityFatal, "entry module not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *PacpanError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

func BuildFailed(stage string, cause error) *PacpanError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build failed").
		WithContext("stage", stage)
}

func WriteFailed(path string, cause error) *PacpanError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "writing artifact failed").
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *PacpanError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
