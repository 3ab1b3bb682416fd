package model

// Brief status
type BriefStatus string

const (
	BriefStatusPending BriefStatus = "PENDING"
	BriefStatusParsed  BriefStatus = "PARSED"
	BriefStatusFailed  BriefStatus = "FAILED"
)

// Generation status — a coarse batch-progress label. It records how far the
// batch narrative has advanced, never what happened to an individual video.
type GenerationStatus string

const (
	GenerationStatusPending     GenerationStatus = "PENDING"
	GenerationStatusQueued      GenerationStatus = "QUEUED"
	GenerationStatusScriptGen   GenerationStatus = "SCRIPT_GEN"
	GenerationStatusAvatarGen   GenerationStatus = "AVATAR_GEN"
	GenerationStatusVideoGen    GenerationStatus = "VIDEO_GEN"
	GenerationStatusCompositing GenerationStatus = "COMPOSITING"
	GenerationStatusUploading   GenerationStatus = "UPLOADING"
	GenerationStatusCompleted   GenerationStatus = "COMPLETED"
	GenerationStatusFailed      GenerationStatus = "FAILED"
)

// Terminal reports whether the generation has reached a final status.
func (s GenerationStatus) Terminal() bool {
	return s == GenerationStatusCompleted || s == GenerationStatusFailed
}

// Video status
type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "PENDING"
	VideoStatusProcessing VideoStatus = "PROCESSING"
	VideoStatusCompleted  VideoStatus = "COMPLETED"
	VideoStatusFailed     VideoStatus = "FAILED"
)

// Quality review status, written by the external review process only.
type QualityStatus string

const (
	QualityStatusPending QualityStatus = "PENDING"
	QualityStatusPassed  QualityStatus = "PASSED"
	QualityStatusFailed  QualityStatus = "FAILED"
)

var ValidQualityStatuses = []QualityStatus{
	QualityStatusPending, QualityStatusPassed, QualityStatusFailed,
}

// Service types for cost ledger rows
type ServiceType string

const (
	ServiceTypeScript  ServiceType = "script_generation"
	ServiceTypeAvatar  ServiceType = "avatar_generation"
	ServiceTypeCompose ServiceType = "video_composition"
	ServiceTypeStorage ServiceType = "storage_upload"
)

// Billing unit types
type UnitType string

const (
	UnitTypeTokens  UnitType = "tokens"
	UnitTypeSeconds UnitType = "seconds"
	UnitTypeBytes   UnitType = "bytes"
)
