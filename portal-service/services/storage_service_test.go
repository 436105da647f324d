package services

import "testing"

func TestParseFileSize(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"25MB", 25 << 20},
		{"1GB", 1 << 30},
		{"512KB", 512 << 10},
		{"1024B", 1024},
		{"100", 100},
		{" 10 MB ", 10 << 20},
		{"", 0},
		{"garbage", 0},
		{"-5MB", 0},
	}

	for _, tt := range tests {
		if got := parseFileSize(tt.raw); got != tt.want {
			t.Errorf("parseFileSize(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestValidateAttachment(t *testing.T) {
	storage := &StorageService{
		maxFileSize: 1 << 20,
		allowedTypes: map[string]bool{
			".pdf": true,
			".jpg": true,
		},
	}

	tests := []struct {
		name     string
		fileName string
		fileSize int64
		wantErr  bool
	}{
		{"allowed pdf", "lease.pdf", 1024, false},
		{"allowed jpg uppercase ext", "photo.JPG", 1024, false},
		{"too large", "lease.pdf", 2 << 20, true},
		{"disallowed type", "script.exe", 10, true},
		{"no extension", "README", 10, true},
	}

	for _, tt := range tests {
		err := storage.ValidateAttachment(tt.fileName, tt.fileSize)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: ValidateAttachment(%q, %d) error = %v, wantErr %v",
				tt.name, tt.fileName, tt.fileSize, err, tt.wantErr)
		}
	}
}
