package uriutil_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WebWorksCollection/csspp/internal/uriutil"
)

func TestPathToURI(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		windows bool
	}{
		{name: "absolute path", path: "/home/user/styles/site.scss", want: "file:///home/user/styles/site.scss"},
		{name: "root", path: "/", want: "file:///"},
		{name: "space is percent encoded", path: "/tmp/foo bar.scss", want: "file:///tmp/foo%20bar.scss"},
		{name: "drive path", path: `C:\proj\site.scss`, want: "file:///C:/proj/site.scss", windows: true},
		{name: "unc path", path: `\\server\share\site.scss`, want: "file://server/share/site.scss", windows: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.windows != (runtime.GOOS == "windows") {
				t.Skipf("not applicable on %s", runtime.GOOS)
			}
			assert.Equal(t, tt.want, uriutil.PathToURI(tt.path))
		})
	}
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    string
		windows bool
	}{
		{name: "absolute path", uri: "file:///home/user/styles/site.scss", want: "/home/user/styles/site.scss"},
		{name: "percent escapes decode", uri: "file:///tmp/foo%20bar.scss", want: "/tmp/foo bar.scss"},
		{name: "drive letter loses its slash", uri: "file:///C:/proj/site.scss", want: "C:/proj/site.scss"},
		{name: "unc host", uri: "file://server/share/site.scss", want: `\\server\share\site.scss`, windows: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.windows != (runtime.GOOS == "windows") {
				t.Skipf("not applicable on %s", runtime.GOOS)
			}
			assert.Equal(t, tt.want, uriutil.URIToPath(tt.uri))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix paths only")
	}
	for _, path := range []string{
		"/home/user/styles/site.scss",
		"/tmp/foo bar.scss",
		"/var/www/\u989c\u8272.css",
	} {
		assert.Equal(t, path, uriutil.URIToPath(uriutil.PathToURI(path)), path)
	}
}
