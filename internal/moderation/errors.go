package moderation

import "errors"

// Moderator-action and collaborator error taxonomy. Configuration and
// moderator-action errors surface as command rejections; collaborator
// failures are absorbed fail-open inside the engine.
var (
	ErrConfigMissing           = errors.New("required configuration missing")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrTargetNotFound          = errors.New("target not found")
	ErrAlreadyMuted            = errors.New("already muted")
	ErrOperationFailed         = errors.New("operation failed")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)
