package web_test

import (
	"testing"

	"github.com/dfiru/simulchip/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMimeTypeFileExt(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{contentType: "application/json", want: "json"},
		{contentType: "application/json; charset=utf-8", want: "json"},
		{contentType: "IMAGE/JPEG", want: "jpg"},
		{contentType: "image/png", want: "png"},
	}

	for _, tc := range cases {
		t.Run(tc.contentType, func(t *testing.T) {
			ext, err := web.NewMimeType(tc.contentType).FileExt()

			require.NoError(t, err)
			assert.Equal(t, tc.want, ext)
		})
	}
}

func TestMimeTypeFileExt_Unsupported(t *testing.T) {
	_, err := web.NewMimeType("text/html").FileExt()

	assert.Error(t, err)
}

func TestMimeTypeIsImage(t *testing.T) {
	assert.True(t, web.NewMimeType("image/jpeg").IsImage())
	assert.True(t, web.NewMimeType("image/png; charset=binary").IsImage())
	assert.False(t, web.NewMimeType("application/json").IsImage())
}
