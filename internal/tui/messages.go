package tui

import (
	"metrowatch/internal/article"
	"metrowatch/internal/fetch"
	"metrowatch/internal/serpapi"
	"metrowatch/internal/session"
)

type fetchDoneMsg struct {
	buckets *article.Buckets
	errs    []fetch.KeywordError
}

type quotaMsg struct {
	account string
	info    *serpapi.AccountInfo
	err     error
}

type recommendDoneMsg struct {
	titles []string
	err    error
}

type reportDoneMsg struct {
	text string
}

type sendDoneMsg struct {
	err error
}

type previewMsg struct {
	key  session.ItemKey
	text string
	err  error
}

type copyDoneMsg struct {
	err error
}
