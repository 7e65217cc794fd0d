package redirect

import "sync"

// History はクライアントルーターの履歴スタックを表すNavigator。
// Replaceは最上位のエントリを置き換え、履歴の長さは変わらない。
type History struct {
	mu      sync.Mutex
	entries []string
}

// NewHistory はstartを最初のエントリとするHistoryを生成する。
func NewHistory(start string) *History {
	return &History{entries: []string{start}}
}

// Push は新しいエントリを積む。
func (h *History) Push(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, url)
}

func (h *History) Replace(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		h.entries = append(h.entries, url)
		return
	}
	h.entries[len(h.entries)-1] = url
}

// Current は最上位のエントリ（クエリを含む）を返す。
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

func (h *History) CurrentPath() string {
	return pathOnly(h.Current())
}

// Len は履歴エントリ数を返す。
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Location は単純なロケーションオブジェクトを表すNavigator。
// Replaceは新しいURLを代入する。
type Location struct {
	mu          sync.Mutex
	href        string
	assignCount int
}

// NewLocation はhrefを現在のURLとするLocationを生成する。
func NewLocation(href string) *Location {
	return &Location{href: href}
}

func (l *Location) Replace(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.href = url
	l.assignCount++
}

// Href は現在のURLを返す。
func (l *Location) Href() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.href
}

// Assignments はReplaceで代入された回数を返す。
func (l *Location) Assignments() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.assignCount
}

func (l *Location) CurrentPath() string {
	return pathOnly(l.Href())
}

var (
	_ Navigator = (*History)(nil)
	_ Locator   = (*History)(nil)
	_ Navigator = (*Location)(nil)
	_ Locator   = (*Location)(nil)
)
