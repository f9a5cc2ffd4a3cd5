package tools_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/tools"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in       string
		lat, lon float64
	}{
		{"21.4225,39.8262", 21.4225, 39.8262},
		{" 21.4225 , 39.8262 ", 21.4225, 39.8262},
		{"51.5,-0.12,extra", 51.5, -0.12},
		{"10 Downing Street", 0, 0},
		{"north,south", 0, 0},
		{"12.5,", 0, 0},
		{"NaN,1", 0, 0},
		{"", 0, 0},
	}
	for _, tt := range tests {
		lat, lon := tools.ParseLocation(tt.in)
		assert.Equal(t, tt.lat, lat, "lat of %q", tt.in)
		assert.Equal(t, tt.lon, lon, "lon of %q", tt.in)
	}
}

func TestArgs_Bool(t *testing.T) {
	args := tools.Args{"yes": true, "str": "false", "bad": 3, "null": nil}

	v, ok, err := args.Bool("yes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)

	v, ok, err = args.Bool("str")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, v)

	_, ok, err = args.Bool("null")
	require.NoError(t, err)
	assert.False(t, ok, "null counts as absent")

	_, _, err = args.Bool("bad")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestArgs_Strings(t *testing.T) {
	args := tools.Args{"text": "hi", "blank": "  ", "num": 1.5}

	s, err := args.RequiredString("text")
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	_, err = args.RequiredString("blank")
	assert.ErrorIs(t, err, tools.ErrMissingRequiredArg)

	_, err = args.String("num")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	s, err = args.String("absent")
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestDecodeImage(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("GIF89a"))

	img, err := tools.DecodeImage(map[string]any{"filename": "logo.gif", "b64": payload})
	require.NoError(t, err)
	assert.Equal(t, "logo.gif", img.Filename)
	assert.Equal(t, []byte("GIF89a"), img.Data)

	img, err = tools.DecodeImage(map[string]any{"filename": "logo.gif", "b64": "data:image/gif;base64," + payload})
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF89a"), img.Data)

	_, err = tools.DecodeImage(map[string]any{"filename": "logo.gif", "b64": "!!!"})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = tools.DecodeImage(map[string]any{"b64": payload})
	assert.ErrorIs(t, err, tools.ErrMissingRequiredArg)

	_, err = tools.DecodeImage("logo.gif")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestEnv_ImagePath(t *testing.T) {
	env := &tools.Env{AssetPatterns: tools.DefaultAssetPatterns}

	p, err := env.ImagePath("Banner.PNG")
	require.NoError(t, err)
	assert.Equal(t, "docs/assets/images/Banner.PNG", p)

	p, err = env.ImagePath(`..\..\evil/../photo.jpg`)
	require.NoError(t, err)
	assert.Equal(t, "docs/assets/images/photo.jpg", p)

	for _, name := range []string{"bulletin.pdf", "photo.heic", "icon.ico", "flyer.bmp"} {
		p, err = env.ImagePath(name)
		require.NoError(t, err, name)
		assert.Equal(t, "docs/assets/images/"+name, p)
	}

	_, err = env.ImagePath("  ")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestEnv_ImagePath_Restricted(t *testing.T) {
	env := &tools.Env{AssetPatterns: []string{"*.{png,jpg}"}}

	p, err := env.ImagePath("Banner.PNG")
	require.NoError(t, err)
	assert.Equal(t, "docs/assets/images/Banner.PNG", p)

	_, err = env.ImagePath("script.sh")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestReplaceCopy(t *testing.T) {
	page := "<h1>x</h1>" + tools.CopyStart + "old copy" + tools.CopyEnd + "<footer/>"

	out, err := tools.ReplaceCopy(page, "Welcome")
	require.NoError(t, err)
	assert.Equal(t, "<h1>x</h1>"+tools.CopyStart+"\nWelcome\n"+tools.CopyEnd+"<footer/>", out)

	_, err = tools.ReplaceCopy("<p>"+tools.CopyStart+"</p>", "x")
	assert.ErrorIs(t, err, core.ErrMarkersNotFound)

	_, err = tools.ReplaceCopy(tools.CopyEnd+"middle"+tools.CopyStart, "x")
	assert.ErrorIs(t, err, core.ErrMarkersNotFound, "end before start")
}
