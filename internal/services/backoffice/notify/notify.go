// Package notify collects user notifications for one request and carries
// them across redirects in a short-lived cookie.
package notify

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
)

// CookieName stores pending notifications between a redirect and the next page.
const CookieName = "backoffice_flash"

const maxNotices = 5

// Kind is the notification severity.
type Kind string

const (
	NoticeSuccess Kind = "success"
	NoticeError   Kind = "error"
)

// Notice is one notification. Key is a message catalog key formatted with Args.
type Notice struct {
	Kind Kind     `json:"kind"`
	Key  string   `json:"key"`
	Args []string `json:"args,omitempty"`
}

func (n Notice) valid() bool {
	return (n.Kind == NoticeSuccess || n.Kind == NoticeError) && strings.TrimSpace(n.Key) != ""
}

// Collector gathers notices raised while handling one request.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

// Success records a success notice.
func (c *Collector) Success(key string) {
	c.add(Notice{Kind: NoticeSuccess, Key: key})
}

// Error records an error notice.
func (c *Collector) Error(key string) {
	c.add(Notice{Kind: NoticeError, Key: key})
}

// Successf records a success notice whose message takes arguments.
func (c *Collector) Successf(key string, args ...string) {
	c.add(Notice{Kind: NoticeSuccess, Key: key, Args: args})
}

// Errorf records an error notice whose message takes arguments.
func (c *Collector) Errorf(key string, args ...string) {
	c.add(Notice{Kind: NoticeError, Key: key, Args: args})
}

func (c *Collector) add(n Notice) {
	if c == nil || !n.valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Notices returns a copy of the collected notices in arrival order.
func (c *Collector) Notices() []Notice {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}

// Write stores notices in the flash cookie. Nothing is written for an empty list.
func Write(w http.ResponseWriter, r *http.Request, notices ...Notice) {
	kept := make([]Notice, 0, len(notices))
	for _, n := range notices {
		if n.valid() {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 || w == nil {
		return
	}
	if len(kept) > maxNotices {
		kept = kept[len(kept)-maxNotices:]
	}
	payload, err := json.Marshal(kept)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadAndClear returns pending notices and expires the cookie. Malformed
// cookies are cleared and ignored.
func ReadAndClear(w http.ResponseWriter, r *http.Request) []Notice {
	if r == nil {
		return nil
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	if w != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var decoded []Notice
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil
	}
	notices := make([]Notice, 0, len(decoded))
	for _, n := range decoded {
		if n.valid() {
			notices = append(notices, n)
		}
	}
	return notices
}
