package handlers

import "testing"

func TestExtractGDriveFileID(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "file view link",
			url:  "https://drive.google.com/file/d/1aBcDeFgHiJkLmNoPqRsTuVwXyZ012345/view?usp=sharing",
			want: "1aBcDeFgHiJkLmNoPqRsTuVwXyZ012345",
		},
		{
			name: "open link",
			url:  "https://drive.google.com/open?id=1aBcDeFgHiJkLmNoPqRsTuVwXyZ012345",
			want: "1aBcDeFgHiJkLmNoPqRsTuVwXyZ012345",
		},
		{
			name: "bare id",
			url:  "1aBcDeFgHiJkLmNoPqRsTuVwXyZ012345",
			want: "1aBcDeFgHiJkLmNoPqRsTuVwXyZ012345",
		},
		{
			name: "not a drive url",
			url:  "https://example.com/video.mp4",
			want: "",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractGDriveFileID(tc.url); got != tc.want {
				t.Errorf("extractGDriveFileID(%q): got %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}
