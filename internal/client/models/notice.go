package models

import "time"

// NoticeKind distinguishes success banners from error banners.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient status message shown after a console action.
type Notice struct {
	Kind    NoticeKind
	Text    string
	Created time.Time
}
