package model

import "time"

// DownloadPrefix is prepended to the original filename when an unlocked file is served.
const DownloadPrefix = "unlocked_"

// ProcessedFile is an unlocked PDF held by the ephemeral store until the reaper evicts it.
// Entries are immutable once stored; they are only ever inserted or removed wholesale.
type ProcessedFile struct {
	ID               string    `json:"file_id"`
	Content          []byte    `json:"-"`
	OriginalFilename string    `json:"original_filename"`
	Pages            int       `json:"pages"`
	CreatedAt        time.Time `json:"created_at"`
}

// DownloadName returns the suggested attachment name.
func (f *ProcessedFile) DownloadName() string {
	return DownloadPrefix + f.OriginalFilename
}

// Size is the length of the unlocked content in bytes.
func (f *ProcessedFile) Size() int64 {
	return int64(len(f.Content))
}
