package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		ua   string
		want Platform
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", IOS},
		{"Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X)", IOS},
		{"Mozilla/5.0 (iPod touch; CPU iPhone OS 12_0 like Mac OS X)", IOS},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8)", Android},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", Desktop},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0)", Desktop},
		{"", Desktop},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.ua))
		})
	}
	assert.True(t, IOS.Mobile())
	assert.True(t, Android.Mobile())
	assert.False(t, Desktop.Mobile())
}

func TestApp_Capable(t *testing.T) {
	assert.True(t, LINE.Capable("https://line.me/R/ti/p/a"))
	assert.True(t, LINE.Capable("https://liff.line.me/123-abc"))
	assert.True(t, LINE.Capable("https://LINE.ME/R/ti/p/a"))
	assert.False(t, LINE.Capable("https://stocktrends.jp/line"))
	assert.False(t, LINE.Capable("https://notline.me/x"))
	assert.False(t, LINE.Capable("line.me/R/ti/p/a"))
	assert.False(t, LINE.Capable("://bad"))
}

func TestApp_NativeURL(t *testing.T) {
	dest := "https://line.me/R/ti/p/a?from=lp"
	assert.Equal(t, "line:///R/ti/p/a?from=lp", LINE.NativeURL(dest, IOS))
	assert.Equal(t, "intent://line.me/R/ti/p/a#Intent;scheme=https;package=jp.naver.line.android;end",
		LINE.NativeURL(dest, Android))
	assert.Equal(t, dest, LINE.NativeURL(dest, Desktop))
}

func TestApp_StoreURL(t *testing.T) {
	assert.Equal(t, "https://apps.apple.com/jp/app/line/id443904275", LINE.StoreURL(IOS))
	assert.Equal(t, "https://play.google.com/store/apps/details?id=jp.naver.line.android", LINE.StoreURL(Android))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "show-download-fallback", ShowDownloadFallback.String())
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "state(99)", State(99).String())
	assert.True(t, Navigating.Terminal())
	assert.False(t, ShowDownloadFallback.Terminal())
}
