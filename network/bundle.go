package network

import (
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"nearshare/protocol/sharing"
)

const (
	defaultMimeType = "application/octet-stream"
	textTitleRunes  = 64
)

// outgoing is one bundle entry. Exactly one of file, text and wifi is set.
type outgoing struct {
	file *sharing.FileMetadata
	path string

	text *sharing.TextMetadata
	body string

	wifi        *sharing.WifiCredentialsMetadata
	credentials *sharing.WifiCredentials
}

// Bundle is the ordered set of entries offered in one
// transfer. Every entry gets a payload id from the connection's generator.
// A Bundle is handed to Send and must not be modified afterwards.
type Bundle struct {
	ids     *PayloadIDs
	entries []outgoing
}

// NewBundle returns an empty bundle drawing ids from ids.
func NewBundle(ids *PayloadIDs) *Bundle {
	if ids == nil {
		ids = NewPayloadIDs()
	}
	return &Bundle{ids: ids}
}

// AddFile queues the regular file at path. Its contents are read when sent.
func (b *Bundle) AddFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%q is not a regular file", path)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}

	b.entries = append(b.entries, outgoing{
		file: &sharing.FileMetadata{
			Name:      info.Name(),
			Type:      fileKind(mimeType),
			PayloadId: b.ids.Next(),
			Size:      info.Size(),
			MimeType:  mimeType,
			Id:        b.ids.Next(),
		},
		path: path,
	})
	return nil
}

// AddText queues a text snippet. Absolute http(s) URLs are announced as URL.
func (b *Bundle) AddText(text string) error {
	if text == "" {
		return errors.New("text is empty")
	}
	b.entries = append(b.entries, outgoing{
		text: &sharing.TextMetadata{
			TextTitle: textTitle(text),
			Type:      textKind(text),
			PayloadId: b.ids.Next(),
			Size:      int64(len(text)),
			Id:        b.ids.Next(),
		},
		body: text,
	})
	return nil
}

// AddWifi queues credentials for a wifi network.
func (b *Bundle) AddWifi(ssid string, security sharing.WifiCredentialsMetadata_SecurityType, password string, hidden bool) error {
	if ssid == "" {
		return errors.New("ssid is empty")
	}
	b.entries = append(b.entries, outgoing{
		wifi: &sharing.WifiCredentialsMetadata{
			Ssid:         ssid,
			SecurityType: security,
			PayloadId:    b.ids.Next(),
			Id:           b.ids.Next(),
		},
		credentials: &sharing.WifiCredentials{Password: password, HiddenSsid: hidden},
	})
	return nil
}

// Len returns the number of queued entries.
func (b *Bundle) Len() int {
	return len(b.entries)
}

func (b *Bundle) introduction() *sharing.V1Frame {
	intro := &sharing.IntroductionFrame{}
	for _, entry := range b.entries {
		switch {
		case entry.file != nil:
			intro.FileMetadata = append(intro.FileMetadata, entry.file)
		case entry.text != nil:
			intro.TextMetadata = append(intro.TextMetadata, entry.text)
		case entry.wifi != nil:
			intro.WifiCredentialsMetadata = append(intro.WifiCredentialsMetadata, entry.wifi)
		}
	}
	return &sharing.V1Frame{Type: sharing.V1Frame_INTRODUCTION, Introduction: intro}
}

func fileKind(mimeType string) sharing.FileMetadata_Type {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return sharing.FileMetadata_IMAGE
	case strings.HasPrefix(mimeType, "video/"):
		return sharing.FileMetadata_VIDEO
	case strings.HasPrefix(mimeType, "audio/"):
		return sharing.FileMetadata_AUDIO
	case mimeType == "application/vnd.android.package-archive":
		return sharing.FileMetadata_APP
	default:
		return sharing.FileMetadata_UNKNOWN
	}
}

func textKind(text string) sharing.TextMetadata_Type {
	u, err := url.Parse(strings.TrimSpace(text))
	if err == nil && u.IsAbs() && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return sharing.TextMetadata_URL
	}
	return sharing.TextMetadata_TEXT
}

func textTitle(text string) string {
	if utf8.RuneCountInString(text) <= textTitleRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:textTitleRunes]) + "…"
}

// summarize renders a short human description of an introduction.
func summarize(intro *sharing.IntroductionFrame) string {
	var parts []string
	switch n := len(intro.FileMetadata); {
	case n == 1:
		parts = append(parts, fmt.Sprintf("file %q", intro.FileMetadata[0].Name))
	case n > 1:
		parts = append(parts, fmt.Sprintf("%d files", n))
	}
	switch n := len(intro.TextMetadata); {
	case n == 1:
		parts = append(parts, fmt.Sprintf("%s %q", strings.ToLower(intro.TextMetadata[0].Type.String()), intro.TextMetadata[0].TextTitle))
	case n > 1:
		parts = append(parts, fmt.Sprintf("%d texts", n))
	}
	for _, w := range intro.WifiCredentialsMetadata {
		parts = append(parts, fmt.Sprintf("wifi %q", w.Ssid))
	}
	return strings.Join(parts, ", ")
}
