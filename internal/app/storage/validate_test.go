package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pulsechat/internal/pkg/errs"
)

func TestValidateFileSize(t *testing.T) {
	req := require.New(t)

	// Valid sizes pass
	req.Nil(ValidateFileSize(1))
	req.Nil(ValidateFileSize(MaxAvatarSize))

	// Zero and negative sizes are invalid parameters
	req.Equal(errs.ErrInvalidParams, ValidateFileSize(0).Code)
	req.Equal(errs.ErrInvalidParams, ValidateFileSize(-1).Code)

	// Oversized uploads are rejected with the size error
	req.Equal(errs.ErrFileSizeTooLarge, ValidateFileSize(MaxAvatarSize+1).Code)
}

func TestValidateFileType_Accepts_Matching_Extension_And_MIME(t *testing.T) {
	req := require.New(t)

	req.Nil(ValidateFileType("avatar.png", "image/png"))
	req.Nil(ValidateFileType("photo.JPG", "image/jpeg"))
	req.Nil(ValidateFileType("pic.webp", "IMAGE/WEBP"))
}

func TestValidateFileType_Rejects_Disallowed_MIME(t *testing.T) {
	req := require.New(t)

	customErr := ValidateFileType("script.svg", "image/svg+xml")

	req.NotNil(customErr)
	req.Equal(errs.ErrFileTypeInvalid, customErr.Code)
}

func TestValidateFileType_Rejects_Extension_MIME_Mismatch(t *testing.T) {
	req := require.New(t)

	// A png MIME with a jpg extension does not agree
	customErr := ValidateFileType("avatar.jpg", "image/png")

	req.NotNil(customErr)
	req.Equal(errs.ErrFileTypeInvalid, customErr.Code)
}

func TestValidateFileType_Rejects_Missing_Extension(t *testing.T) {
	req := require.New(t)

	customErr := ValidateFileType("avatar", "image/png")

	req.NotNil(customErr)
	req.Equal(errs.ErrFileTypeInvalid, customErr.Code)
}
