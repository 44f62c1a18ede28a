package chat

import (
	"testing"

	"pairchat/internal/pkg/errs"
)

func TestValidateImageSize(t *testing.T) {
	if err := ValidateImageSize(1024); err != nil {
		t.Errorf("valid size rejected: %v", err)
	}
	if err := ValidateImageSize(0); err == nil || err.Code != errs.ErrInvalidParams {
		t.Error("zero size accepted")
	}
	if err := ValidateImageSize(MaxImageSize + 1); err == nil || err.Code != errs.ErrFileSizeTooLarge {
		t.Error("oversized file accepted")
	}
}

func TestValidateImageType(t *testing.T) {
	cases := []struct {
		fileName string
		mimeType string
		ok       bool
	}{
		{"photo.jpg", "image/jpeg", true},
		{"photo.JPEG", "image/jpeg", true},
		{"pic.png", "IMAGE/PNG", true},
		{"anim.gif", "image/gif", true},
		{"doc.pdf", "application/pdf", false},
		{"noext", "image/png", false},
		{"mismatch.png", "image/jpeg", false},
		{"script.png.exe", "image/png", false},
	}

	for _, tc := range cases {
		err := ValidateImageType(tc.fileName, tc.mimeType)
		if tc.ok && err != nil {
			t.Errorf("ValidateImageType(%q, %q) rejected: %v", tc.fileName, tc.mimeType, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ValidateImageType(%q, %q) accepted, want rejection", tc.fileName, tc.mimeType)
		}
	}
}
