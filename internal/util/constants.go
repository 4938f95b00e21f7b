package util

const DateFormat = "2006-01-02"

const StorageMinio = "minio"

// ContextUserKey is where the auth middleware stores *Claims on the gin context.
const ContextUserKey = "user"

const (
	MimeAudio       = "audio/"
	MimeVideo       = "video/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedAudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".webm", ".flac", ".aac"}
)
