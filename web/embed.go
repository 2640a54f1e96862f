package web

import "embed"

// StaticFS embeds the single page app: index.html plus its scripts and styles.
//
//go:embed static/*
var StaticFS embed.FS
