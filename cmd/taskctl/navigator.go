package main

import (
	"fmt"
	"io"
	"net/url"

	"github.com/hitoshi/taskman/internal/client/redirect"
)

// terminalNavigator は遷移を履歴に記録し、ログイン画面への遷移時は通知を表示する。
type terminalNavigator struct {
	history *redirect.History
	out     io.Writer
}

func (n *terminalNavigator) Replace(target string) {
	n.history.Replace(target)

	u, err := url.Parse(target)
	if err != nil || u.Path != redirect.DefaultLoginPath {
		return
	}

	q := u.Query()
	notice := q.Get("message")
	if text := redirect.NoticeText(notice); text != "" {
		fmt.Fprintln(n.out, text)
	}
	if notice == redirect.NoticeLogoutSuccessful {
		return
	}
	if next := q.Get("redirect"); next != "" {
		fmt.Fprintf(n.out, "Run \"taskctl login --redirect %s\" to continue.\n", next)
		return
	}
	fmt.Fprintln(n.out, "Run \"taskctl login\" to continue.")
}

func (n *terminalNavigator) CurrentPath() string {
	return n.history.CurrentPath()
}
