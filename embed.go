package pubfs

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// base.css
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
