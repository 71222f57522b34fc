package api

import (
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMultipartPreservesQuotedFilename(t *testing.T) {
	body, contentType, err := encodeMultipart(map[string]string{"title": "t"}, "images", []Upload{
		{Filename: `a"b\c.png`, ContentType: "image/png", Data: strings.NewReader("payload")},
	})
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)

	r := multipart.NewReader(body, params["boundary"])
	fields := map[string]string{}
	var filename string
	for {
		part, err := r.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			assert.Equal(t, "images", part.FormName())
			filename = part.FileName()
		} else {
			fields[part.FormName()] = string(data)
		}
	}

	assert.Equal(t, `a"b\c.png`, filename, "quotes and backslashes escape once, not twice")
	assert.Equal(t, map[string]string{"title": "t"}, fields)
}
