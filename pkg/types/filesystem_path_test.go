// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"os"
	"testing"
)

func TestFilesystemPath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path FilesystemPath
		want bool
	}{
		{"absolute path", FilesystemPath("/work/project/"), true},
		{"relative path", FilesystemPath("dist"), true},
		{"dot path", FilesystemPath("."), true},
		{"empty is invalid", FilesystemPath(""), false},
		{"whitespace only is invalid", FilesystemPath("   "), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.path.IsValid()
			if valid != tt.want {
				t.Fatalf("FilesystemPath(%q).IsValid() = %v, want %v", tt.path, valid, tt.want)
			}
			if !tt.want {
				if len(errs) == 0 || !errors.Is(errs[0], ErrInvalidFilesystemPath) {
					t.Errorf("expected ErrInvalidFilesystemPath, got %v", errs)
				}
				var fpErr *InvalidFilesystemPathError
				if !errors.As(errs[0], &fpErr) {
					t.Errorf("error should be *InvalidFilesystemPathError, got: %T", errs[0])
				}
			}
		})
	}
}

func TestFilesystemPath_HasTrailingSeparator(t *testing.T) {
	t.Parallel()

	sep := string(os.PathSeparator)
	if !FilesystemPath("project" + sep).HasTrailingSeparator() {
		t.Error("expected trailing separator to be detected")
	}
	if FilesystemPath("project").HasTrailingSeparator() {
		t.Error("expected no trailing separator")
	}
}
