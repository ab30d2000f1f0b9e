package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		size         int64
		expectedCode string
	}{
		{
			name:     "valid png file",
			filename: "reference.png",
			size:     1024,
		},
		{
			name:     "uppercase extension is accepted",
			filename: "reference.PNG",
			size:     1024,
		},
		{
			name:         "oversized file is rejected",
			filename:     "reference.png",
			size:         MaxFileSize + 1,
			expectedCode: "FILE_TOO_LARGE",
		},
		{
			name:         "non-png extension is rejected",
			filename:     "reference.jpg",
			size:         1024,
			expectedCode: "INVALID_FILE_FORMAT",
		},
		{
			name:         "missing extension is rejected",
			filename:     "reference",
			size:         1024,
			expectedCode: "INVALID_FILE_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileHeader := &multipart.FileHeader{
				Filename: tt.filename,
				Size:     tt.size,
			}

			err := ValidateImageFile(fileHeader)

			if tt.expectedCode == "" {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			var uploadErr *FileUploadError
			assert.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
		})
	}
}
