package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessedFile_DownloadName(t *testing.T) {
	f := &ProcessedFile{OriginalFilename: "Report Q3.pdf", Content: []byte("%PDF-1.7")}

	assert.Equal(t, "unlocked_Report Q3.pdf", f.DownloadName())
	assert.Equal(t, int64(8), f.Size())
}
