package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyTeam   = "team"
	ContextKeyBoard  = "board"
)

// Step workflow bounds. Steps 1-9 are all user-submitted; step 9 triggers
// the analysis call.
const (
	MinStepNumber   = 1
	MaxStepNumber   = 9
	FinalStepNumber = 9
)

// Upload limits
const (
	MaxUploadSizeBytes = 10 * 1024 * 1024
)

// AllowedImageTypes lists the MIME types accepted for image uploads.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// RoomWritePermission is the permission required on a room credential to
// submit step images or read the analysis result.
const RoomWritePermission = "room:write"

// RoomTokenHeader carries the collaboration-room credential.
const RoomTokenHeader = "X-Room-Token"
