package model

// Export is either an in-memory file or, when the file is too large for the
// chat, a link to the uploaded copy.
type Export struct {
	FileName     string
	FileBytes    []byte
	DownloadLink string
}
