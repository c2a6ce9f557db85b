package service

// Provider failures are recoverable: the coordinator converts them into
// retry queue records instead of aborting the pass.

// GenerationError is a caption or image provider failure, including quota
// and malformed-prompt causes.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// UploadError is an image hosting failure.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return "upload failed: " + e.Err.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PublishError is a publishing provider failure.
type PublishError struct {
	Err              error
	RateLimited      bool
	PermissionDenied bool
}

func (e *PublishError) Error() string {
	return "publish failed: " + e.Err.Error()
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
