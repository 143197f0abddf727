package category

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		filename string
		want     Category
	}{
		{"photo.jpg", Photo},
		{"photo.JPG", Photo},
		{"scan.Jpeg", Photo},
		{"anim.gif", Photo},
		{"clip.MOV", Video},
		{"movie.mp4", Video},
		{"song.flac", Audio},
		{"voice.OGG", Audio},
		{"notes.md", Document},
		{"report.PDF", Document},
		{"unknown.xyz", Other},
		{"archive.tar.gz", Other},
		{"README", Other},
		{".bashrc", Other},
		{"", Other},
		{"dir.jpg/file", Other},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := Classify(tt.filename); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	if Classify("photo.JPG") != Classify("photo.jpg") {
		t.Errorf("Classify should ignore extension case")
	}
	if Classify("photo.jpg") != Photo {
		t.Errorf("Classify(photo.jpg) = %q, want %q", Classify("photo.jpg"), Photo)
	}
}

func TestParse(t *testing.T) {
	for _, c := range []Category{Photo, Video, Audio, Document, Other} {
		got, ok := Parse(string(c))
		if !ok || got != c {
			t.Errorf("Parse(%q) = %q, %v; want %q, true", c, got, ok, c)
		}
	}

	for _, s := range []string{"", "Photo", "image", "pdf"} {
		if _, ok := Parse(s); ok {
			t.Errorf("Parse(%q) ok = true, want false", s)
		}
	}
}
