// Package session はクライアント側で現在のベアラートークンを保持する保存先を提供する。
//
// 保存する値は固定キー Key の下にある1つの文字列のみで、値が無いことはログアウト状態を意味する。
// 複数プロセス間の同期は行わない。別プロセスでのログイン・ログアウトは次回の Get まで反映されない。
package session

// Key はトークンを保存する固定キー。
const Key = "token"

// Store はトークンの保存先インターフェース。
type Store interface {
	// Get は保存されているトークンを返す。無い場合は ok=false。
	Get() (token string, ok bool)
	// Set はトークンを保存する。既存の値は置き換えられる。
	Set(token string) error
	// Clear はトークンを削除する。保存されていない場合も成功する。
	Clear() error
}
