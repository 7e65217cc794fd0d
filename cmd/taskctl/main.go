// Command taskctl はtaskman APIのコマンドラインクライアント。
//
// ログインで得たトークンをローカルのセッションストアに保存し、
// 保護されたコマンドは実行前にサーバーへトークンの有効性を確認する。
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		// 認証が必要な場合はナビゲーターが案内を表示済み
		if !errors.Is(err, errAuthRequired) {
			fmt.Fprintf(os.Stderr, "taskctl: %s\n", err)
		}
		os.Exit(1)
	}
}
