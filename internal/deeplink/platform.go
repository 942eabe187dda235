package deeplink

import (
	"fmt"
	"net/url"
	"strings"
)

// Platform is the client operating system class.
type Platform int

const (
	Desktop Platform = iota
	IOS
	Android
)

func (p Platform) String() string {
	switch p {
	case IOS:
		return "ios"
	case Android:
		return "android"
	default:
		return "desktop"
	}
}

// Mobile reports whether native-open detection applies.
func (p Platform) Mobile() bool { return p == IOS || p == Android }

// DetectPlatform classifies a User-Agent string.
func DetectPlatform(userAgent string) Platform {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return IOS
	case strings.Contains(ua, "android"):
		return Android
	default:
		return Desktop
	}
}

// App describes a native app that can take over URLs of its web domain.
type App struct {
	Name string
	// Domain: web host the app claims, subdomains included.
	Domain string
	// Scheme replaces "https://"+Domain on iOS.
	Scheme         string
	AndroidPackage string
	AppStoreURL    string
	PlayStoreURL   string
}

// LINE is the default app profile.
var LINE = App{
	Name:           "LINE",
	Domain:         "line.me",
	Scheme:         "line://",
	AndroidPackage: "jp.naver.line.android",
	AppStoreURL:    "https://apps.apple.com/jp/app/line/id443904275",
	PlayStoreURL:   "https://play.google.com/store/apps/details?id=jp.naver.line.android",
}

// Capable reports whether dest is served by the app.
func (a App) Capable(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == a.Domain || strings.HasSuffix(host, "."+a.Domain)
}

// NativeURL returns the URL that asks platform p to open dest in the app.
func (a App) NativeURL(dest string, p Platform) string {
	switch p {
	case IOS:
		return strings.Replace(dest, "https://"+a.Domain, a.Scheme, 1)
	case Android:
		path := ""
		if u, err := url.Parse(dest); err == nil {
			path = u.Path
		}
		return fmt.Sprintf("intent://%s%s#Intent;scheme=https;package=%s;end", a.Domain, path, a.AndroidPackage)
	default:
		return dest
	}
}

// StoreURL returns the download page for platform p.
func (a App) StoreURL(p Platform) string {
	if p == IOS {
		return a.AppStoreURL
	}
	return a.PlayStoreURL
}
