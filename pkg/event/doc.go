// Package event はユーザー操作の履歴として記録するイベントの型を定義する。
package event
